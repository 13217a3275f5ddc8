package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// maxSQSDelay is the hard SQS ceiling on per-message DelaySeconds. Transfers
// scheduled further out than this are re-enqueued by the reconciliation
// sweep until their time arrives.
const maxSQSDelay = 15 * time.Minute

// SQSAPI is the subset of the SQS client the scheduler uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler delivers activation signals through an SQS queue using
// per-message delays.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a scheduler backed by the given queue.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{Client: client, QueueURL: queueURL}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleActivation enqueues a delayed activation message for a transaction.
func (s *SQSScheduler) ScheduleActivation(ctx context.Context, txID string, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	if delay > maxSQSDelay {
		delay = maxSQSDelay
	}

	body, err := json.Marshal(ActivationMessage{TransactionId: txID})
	if err != nil {
		return fmt.Errorf("failed to marshal activation message: %w", err)
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue activation for transaction %s: %w", txID, err)
	}
	return nil
}
