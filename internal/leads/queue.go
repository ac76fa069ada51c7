package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventLeadReceived is the envelope type consumed by the CRM sync worker.
const EventLeadReceived = "crm.lead.received.v1"

// SQSAPI is the subset of the SQS client used by QueuePublisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// LeadReceivedEvent is published for every accepted submission.
type LeadReceivedEvent struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Lead       *Submission `json:"lead"`
}

// QueuePublisher hands submissions to the CRM pipeline over SQS.
type QueuePublisher struct {
	client   SQSAPI
	queueURL string
}

// NewQueuePublisher creates a queue wrapper around the provided SQS client.
func NewQueuePublisher(client SQSAPI, queueURL string) *QueuePublisher {
	if client == nil {
		panic("leads: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("leads: SQS queueURL cannot be empty")
	}
	return &QueuePublisher{client: client, queueURL: queueURL}
}

func (q *QueuePublisher) Record(ctx context.Context, sub *Submission) error {
	body, err := json.Marshal(LeadReceivedEvent{
		EventType:  EventLeadReceived,
		OccurredAt: sub.ReceivedAt,
		Lead:       sub,
	})
	if err != nil {
		return fmt.Errorf("leads: marshal queue event: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventLeadReceived)},
			"lead_type":  {DataType: aws.String("String"), StringValue: aws.String(sub.Type.MetricLabel())},
		},
	})
	if err != nil {
		return fmt.Errorf("leads: failed to send SQS message: %w", err)
	}
	return nil
}

var _ Recorder = (*QueuePublisher)(nil)
