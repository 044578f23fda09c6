package execsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
	"github.com/programme-lv/competitions/submsrvc"
)

// CallbackHandler receives the execution collaborator's reports.
type CallbackHandler interface {
	ReportStatus(ctx context.Context, p submsrvc.ReportStatusParams) (subm.Subm, error)
	Authorize(ctx context.Context, submUuid uuid.UUID, secret string) (subm.Subm, error)
	AttachScore(ctx context.Context, p submsrvc.AttachScoreParams) error
}

// StartReceivingCallbacksFromSqs polls the callback queue until ctx is
// cancelled. Handled and rejected messages are deleted; anything else is
// left on the queue for redelivery.
func StartReceivingCallbacksFromSqs(ctx context.Context,
	sqsUrl string, client SqsApi,
	handler CallbackHandler,
	logger *slog.Logger,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(sqsUrl),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     1,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("failed to receive messages", "error", err)
			continue
		}

		for _, msg := range output.Messages {
			if msg.Body == nil || msg.ReceiptHandle == nil {
				logger.Error("malformed sqs message", "message_id", aws.ToString(msg.MessageId))
				continue
			}

			err = HandleCallback(ctx, handler, []byte(*msg.Body))
			if err != nil {
				logger.Error("failed to process callback", "error", err)
			}
			if !settled(err) {
				continue
			}

			_, err = client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(sqsUrl),
				ReceiptHandle: msg.ReceiptHandle,
			})
			if err != nil {
				logger.Error("failed to ack message", "error", err)
			}
		}
	}
}

var rejectionCodes = []string{
	srvcerror.ErrCodeAuthorizationFailed,
	srvcerror.ErrCodeInvalidTransition,
	srvcerror.ErrCodeDuplicateScore,
	srvcerror.ErrCodeInvalidRequest,
	srvcerror.ErrCodeNotFound,
}

// settled is true when redelivering the message cannot change the outcome.
func settled(err error) bool {
	if err == nil {
		return true
	}
	for _, code := range rejectionCodes {
		if srvcerror.IsCode(err, code) {
			return true
		}
	}
	return false
}

func errMalformedCallback(err error) error {
	return srvcerror.ErrInvalidRequest("malformed callback message").SetDebug(err)
}

// HandleCallback decodes one callback message and applies it.
func HandleCallback(ctx context.Context, handler CallbackHandler, body []byte) error {
	var msg CallbackMsg
	err := json.Unmarshal(body, &msg)
	if err != nil {
		return errMalformedCallback(fmt.Errorf("failed to unmarshal callback: %w", err))
	}

	submUuid, err := uuid.Parse(msg.SubmUUID)
	if err != nil {
		return errMalformedCallback(fmt.Errorf("failed to parse submission_uuid: %w", err))
	}

	switch msg.MsgType {
	case MsgTypeStatus:
		_, err = handler.ReportStatus(ctx, submsrvc.ReportStatusParams{
			SubmUUID: submUuid,
			Secret:   msg.Secret,
			Status:   msg.Status,
			Details:  msg.Details,
		})
		return err
	case MsgTypeScore:
		if msg.Score == nil {
			return errMalformedCallback(errors.New("score message without score"))
		}
		_, err = handler.Authorize(ctx, submUuid, msg.Secret)
		if err != nil {
			return err
		}
		return handler.AttachScore(ctx, submsrvc.AttachScoreParams{
			SubmUUID: submUuid,
			ColumnID: msg.ColumnID,
			Value:    *msg.Score,
		})
	default:
		return errMalformedCallback(fmt.Errorf("unknown callback message type %q", msg.MsgType))
	}
}
