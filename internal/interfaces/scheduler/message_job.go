package scheduler

import (
	"context"
	"fmt"

	"smsledger/internal/domain/ingest"
)

// MessageProcessor is the ingest service seen from the pool.
type MessageProcessor interface {
	Process(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error)
}

// MessageJob runs one inbound message through ingest off the request path.
type MessageJob struct {
	id        string
	msg       ingest.InboundMessage
	processor MessageProcessor
}

func NewMessageJob(id string, msg ingest.InboundMessage, processor MessageProcessor) *MessageJob {
	return &MessageJob{id: id, msg: msg, processor: processor}
}

func (j *MessageJob) Execute(ctx context.Context) error {
	if _, err := j.processor.Process(ctx, j.msg); err != nil {
		return fmt.Errorf("process message %s: %w", j.id, err)
	}
	return nil
}

func (j *MessageJob) Key() string {
	return j.id
}

func (j *MessageJob) Description() string {
	if j.msg.Sender == "" {
		return "message from unknown sender"
	}
	return "message from " + j.msg.Sender
}
