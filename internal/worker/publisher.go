package worker

import (
	"context"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/queue"
)

// Publisher receives turn lifecycle events. events.Broadcaster implements it
// over Redis pub/sub.
type Publisher interface {
	PublishRequestQueued(ctx context.Context, req queue.TurnRequest) error
	PublishRequestProcessing(ctx context.Context, req queue.TurnRequest) error
	PublishResult(ctx context.Context, res queue.TurnResult) error
	PublishGameStateUpdated(ctx context.Context, ownerID, location string, clock time.Time) error
}

// EventQueue holds fired story-event prompts until the owner's next turn.
type EventQueue interface {
	Enqueue(ctx context.Context, ownerID, prompt string) error
	Drain(ctx context.Context, ownerID string) ([]string, error)
}

type nopPublisher struct{}

func (nopPublisher) PublishRequestQueued(context.Context, queue.TurnRequest) error     { return nil }
func (nopPublisher) PublishRequestProcessing(context.Context, queue.TurnRequest) error { return nil }
func (nopPublisher) PublishResult(context.Context, queue.TurnResult) error             { return nil }
func (nopPublisher) PublishGameStateUpdated(context.Context, string, string, time.Time) error {
	return nil
}
