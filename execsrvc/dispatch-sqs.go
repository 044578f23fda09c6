package execsrvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/competitions/metrics"
	"github.com/programme-lv/competitions/subm"
)

// SqsApi is the part of *sqs.Client used here.
type SqsApi interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SqsDispatcher enqueues run requests for the compute workers.
type SqsDispatcher struct {
	logger *slog.Logger
	client SqsApi

	// run request queue url
	runQ string
	// status callback queue url passed along to workers
	callbackQ string

	// optional, presigned download url of the submitted data
	dataUrl func(ctx context.Context, dataKey uuid.UUID) (string, error)

	sendTimeout time.Duration
}

func NewSqsDispatcher(
	client SqsApi,
	runQ string,
	callbackQ string,
	dataUrl func(ctx context.Context, dataKey uuid.UUID) (string, error),
) *SqsDispatcher {
	return &SqsDispatcher{
		logger:      slog.Default().With("module", "exec"),
		client:      client,
		runQ:        runQ,
		callbackQ:   callbackQ,
		dataUrl:     dataUrl,
		sendTimeout: 10 * time.Second,
	}
}

// Dispatch is fire-and-forget: the message is sent in the background and
// a failure is only logged, retries belong to the workers' side.
func (d *SqsDispatcher) Dispatch(ctx context.Context, req subm.DispatchReq) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		err := d.send(ctx, req)
		if err != nil {
			metrics.RecordDispatchFailure()
			d.logger.Error("failed to dispatch submission",
				"subm_uuid", req.SubmUUID,
				"scoring", req.Scoring,
				"error", err)
		}
	}()
}

func (d *SqsDispatcher) send(ctx context.Context, req subm.DispatchReq) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	body, err := d.buildBody(ctx, req)
	if err != nil {
		return err
	}

	_, err = d.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.runQ),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return err
	}
	d.logger.Debug("run request enqueued", "subm_uuid", req.SubmUUID, "scoring", req.Scoring)
	return nil
}

func (d *SqsDispatcher) buildBody(ctx context.Context, req subm.DispatchReq) (string, error) {
	run := RunRequest{
		SubmUUID:   req.SubmUUID.String(),
		Secret:     req.Secret.String(),
		PhaseID:    req.PhaseID,
		DataKey:    req.DataKey.String(),
		TaskIDs:    req.TaskIDs,
		IsScoring:  req.Scoring,
		CallbackQ:  d.callbackQ,
		Dispatched: time.Now().UTC().Format(time.RFC3339),
	}
	if d.dataUrl != nil {
		url, err := d.dataUrl(ctx, req.DataKey)
		if err != nil {
			// workers can still fetch by key
			d.logger.Warn("failed to presign data url", "data_key", req.DataKey, "error", err)
		} else {
			run.DataUrl = &url
		}
	}
	return encodeRunRequest(run)
}
