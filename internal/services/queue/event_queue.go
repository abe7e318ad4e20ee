package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// EventQueue holds fired story-event prompts per owner until the owner's
// next turn drains them into its prompt.
type EventQueue struct {
	client *Client
}

func NewEventQueue(client *Client) *EventQueue {
	return &EventQueue{client: client}
}

func eventQueueKey(ownerID string) string {
	return fmt.Sprintf("story-events:%s", ownerID)
}

// Enqueue adds a story event prompt to the end of the owner's queue.
func (eq *EventQueue) Enqueue(ctx context.Context, ownerID, prompt string) error {
	key := eventQueueKey(ownerID)
	if err := eq.client.rdb.RPush(ctx, key, prompt).Err(); err != nil {
		eq.client.logger.Error("Failed to enqueue story event", "error", err, "owner_id", ownerID)
		return fmt.Errorf("failed to enqueue story event: %w", err)
	}

	eq.client.logger.Debug("Enqueued story event",
		"owner_id", ownerID,
		"prompt_preview", truncate(prompt, 50))
	return nil
}

// Drain removes and returns every queued prompt in order. The read and the
// delete run in one transaction so a prompt is delivered at most once.
func (eq *EventQueue) Drain(ctx context.Context, ownerID string) ([]string, error) {
	key := eventQueueKey(ownerID)

	var lrange *redis.StringSliceCmd
	_, err := eq.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		eq.client.logger.Error("Failed to drain story events", "error", err, "owner_id", ownerID)
		return nil, fmt.Errorf("failed to drain story events: %w", err)
	}

	events := lrange.Val()
	if len(events) > 0 {
		eq.client.logger.Debug("Drained story events", "owner_id", ownerID, "count", len(events))
	}
	return events, nil
}

// MemoryEventQueue is the in-process EventQueue used by the console.
type MemoryEventQueue struct {
	mu     sync.Mutex
	queues map[string][]string
}

func NewMemoryEventQueue() *MemoryEventQueue {
	return &MemoryEventQueue{queues: make(map[string][]string)}
}

func (m *MemoryEventQueue) Enqueue(_ context.Context, ownerID, prompt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[ownerID] = append(m.queues[ownerID], prompt)
	return nil
}

func (m *MemoryEventQueue) Drain(_ context.Context, ownerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.queues[ownerID]
	delete(m.queues, ownerID)
	return events, nil
}
