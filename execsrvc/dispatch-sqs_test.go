package execsrvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/competitions/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSqs struct {
	mu      sync.Mutex
	sent    []*sqs.SendMessageInput
	sendErr error
}

func (f *fakeSqs) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSqs) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSqs) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSqs) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestSqsDispatcherEncodesRunRequest(t *testing.T) {
	client := &fakeSqs{}
	dataUrl := func(ctx context.Context, key uuid.UUID) (string, error) {
		return "https://bucket/" + key.String(), nil
	}
	d := NewSqsDispatcher(client, "run-q", "callback-q", dataUrl)

	s := subm.New(subm.Participant{UUID: uuid.New(), Username: "alice"}, 7, uuid.New())
	d.Dispatch(context.Background(), s.DispatchReq(true, []int64{1, 2}))

	require.Eventually(t, func() bool { return client.sentCount() == 1 }, time.Second, 5*time.Millisecond)

	client.mu.Lock()
	in := client.sent[0]
	client.mu.Unlock()
	assert.Equal(t, "run-q", aws.ToString(in.QueueUrl))

	req, err := DecodeRunRequest(aws.ToString(in.MessageBody))
	require.NoError(t, err)
	assert.Equal(t, s.UUID.String(), req.SubmUUID)
	assert.Equal(t, s.Secret.String(), req.Secret)
	assert.Equal(t, int64(7), req.PhaseID)
	assert.Equal(t, []int64{1, 2}, req.TaskIDs)
	assert.True(t, req.IsScoring)
	assert.Equal(t, "callback-q", req.CallbackQ)
	require.NotNil(t, req.DataUrl)
	assert.Equal(t, "https://bucket/"+s.DataKey.String(), *req.DataUrl)
}

func TestSqsDispatcherDoesNotBlockOnFailure(t *testing.T) {
	client := &fakeSqs{sendErr: errors.New("queue unavailable")}
	presignFails := func(ctx context.Context, key uuid.UUID) (string, error) {
		return "", errors.New("no bucket")
	}
	d := NewSqsDispatcher(client, "run-q", "", presignFails)

	s := subm.New(subm.Participant{UUID: uuid.New()}, 1, uuid.New())
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), s.DispatchReq(false, nil))
	})
	assert.Equal(t, 0, client.sentCount())
}

func TestRecordingDispatcher(t *testing.T) {
	d := NewRecordingDispatcher()
	s := subm.New(subm.Participant{UUID: uuid.New()}, 1, uuid.New())
	d.Dispatch(context.Background(), s.DispatchReq(false, nil))
	d.Dispatch(context.Background(), s.DispatchReq(true, nil))

	reqs := d.Requests()
	require.Len(t, reqs, 2)
	assert.False(t, reqs[0].Scoring)
	assert.True(t, reqs[1].Scoring)

	d.Reset()
	assert.Empty(t, d.Requests())
}
