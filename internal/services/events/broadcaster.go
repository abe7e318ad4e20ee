package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/queue"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRequestQueued     EventType = "request.queued"
	EventTypeRequestProcessing EventType = "request.processing"
	EventTypeRequestCompleted  EventType = "request.completed"
	EventTypeRequestFailed     EventType = "request.failed"
	EventTypeGameStateUpdated  EventType = "game.state_updated"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	OwnerID   string         `json:"owner_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying an owner's turn events.
func Channel(ownerID string) string {
	return fmt.Sprintf("turn-events:%s", ownerID)
}

// Broadcaster publishes turn lifecycle events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishRequestQueued publishes a request.queued event
func (b *Broadcaster) PublishRequestQueued(ctx context.Context, req queue.TurnRequest) error {
	return b.publish(ctx, Event{
		Type:      EventTypeRequestQueued,
		RequestID: req.RequestID,
		OwnerID:   req.OwnerID,
		Data: map[string]any{
			"status": "queued",
			"kind":   req.TurnKind,
		},
	})
}

// PublishRequestProcessing publishes a request.processing event
func (b *Broadcaster) PublishRequestProcessing(ctx context.Context, req queue.TurnRequest) error {
	return b.publish(ctx, Event{
		Type:      EventTypeRequestProcessing,
		RequestID: req.RequestID,
		OwnerID:   req.OwnerID,
		Data: map[string]any{
			"status":    "processing",
			"kind":      req.TurnKind,
			"raw_input": req.RawInput,
		},
	})
}

// PublishResult publishes request.completed or request.failed depending on
// the result.
func (b *Broadcaster) PublishResult(ctx context.Context, res queue.TurnResult) error {
	if !res.Success {
		return b.publish(ctx, Event{
			Type:      EventTypeRequestFailed,
			RequestID: res.RequestID,
			OwnerID:   res.OwnerID,
			Data: map[string]any{
				"status":     "failed",
				"error":      res.ErrorMessage,
				"error_kind": res.ErrorKind,
			},
		})
	}
	return b.publish(ctx, Event{
		Type:      EventTypeRequestCompleted,
		RequestID: res.RequestID,
		OwnerID:   res.OwnerID,
		Data: map[string]any{
			"status": "completed",
			"result": res,
		},
	})
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, ownerID, location string, clock time.Time) error {
	return b.publish(ctx, Event{
		Type:    EventTypeGameStateUpdated,
		OwnerID: ownerID,
		Data: map[string]any{
			"location": location,
			"clock":    clock.Format(time.RFC3339),
		},
	})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	channel := Channel(event.OwnerID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return nil
}
