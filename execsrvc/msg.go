package execsrvc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// RunRequest is the body of a dispatch queue message.
type RunRequest struct {
	SubmUUID   string  `json:"submission_uuid"`
	Secret     string  `json:"secret"`
	PhaseID    int64   `json:"phase_id"`
	DataKey    string  `json:"data_key"`
	DataUrl    *string `json:"data_url,omitempty"`
	TaskIDs    []int64 `json:"task_ids,omitempty"`
	IsScoring  bool    `json:"is_scoring"`
	CallbackQ  string  `json:"callback_sqs_url,omitempty"`
	Dispatched string  `json:"dispatched_at"`
}

const (
	MsgTypeStatus = "status"
	MsgTypeScore  = "score"
)

// CallbackMsg is what the execution collaborator sends back.
type CallbackMsg struct {
	MsgType  string   `json:"msg_type"`
	SubmUUID string   `json:"submission_uuid"`
	Secret   string   `json:"secret"`
	Status   string   `json:"status,omitempty"`
	Details  string   `json:"status_details,omitempty"`
	ColumnID int64    `json:"column_id,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// encodeRunRequest marshals to json, compresses with zstd and
// base64 encodes so the payload fits an sqs message body
func encodeRunRequest(req RunRequest) (string, error) {
	jsonReq, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run request: %w", err)
	}

	zstdEncoder, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer zstdEncoder.Close()

	compressed := zstdEncoder.EncodeAll(jsonReq, make([]byte, 0, len(jsonReq)))
	return base64.StdEncoding.EncodeToString(compressed), nil
}

// DecodeRunRequest reverses encodeRunRequest; used by workers and tests.
func DecodeRunRequest(body string) (RunRequest, error) {
	compressed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return RunRequest{}, fmt.Errorf("failed to decode base64 body: %w", err)
	}

	zstdDecoder, err := zstd.NewReader(nil)
	if err != nil {
		return RunRequest{}, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer zstdDecoder.Close()

	jsonReq, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return RunRequest{}, fmt.Errorf("failed to decompress body: %w", err)
	}

	var req RunRequest
	err = json.Unmarshal(jsonReq, &req)
	if err != nil {
		return RunRequest{}, fmt.Errorf("failed to unmarshal run request: %w", err)
	}
	return req, nil
}
