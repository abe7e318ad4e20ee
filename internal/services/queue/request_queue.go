package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/queue"
)

// RequestsKey is the Redis list external callers push TurnRequests onto.
const RequestsKey = "turn-requests"

// RequestQueue is the Redis intake list feeding the turn scheduler.
type RequestQueue struct {
	client *Client
}

func NewRequestQueue(client *Client) *RequestQueue {
	return &RequestQueue{client: client}
}

// EnqueueRequest validates req and appends it to the intake list.
func (rq *RequestQueue) EnqueueRequest(ctx context.Context, req *queue.TurnRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := rq.client.rdb.RPush(ctx, RequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// DequeueRequest removes and returns the next request, or nil when the
// list is empty.
func (rq *RequestQueue) DequeueRequest(ctx context.Context) (*queue.TurnRequest, error) {
	result, err := rq.client.rdb.LPop(ctx, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	return rq.parse(result)
}

// BlockingDequeueRequest waits up to timeout for a request. It returns nil
// without error when the timeout passes with nothing queued. A zero timeout
// waits until ctx ends.
func (rq *RequestQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.TurnRequest, error) {
	result, err := rq.client.rdb.BLPop(ctx, timeout, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return rq.parse(result[1])
}

func (rq *RequestQueue) parse(raw string) (*queue.TurnRequest, error) {
	req, err := queue.FromJSON([]byte(raw))
	if err != nil {
		rq.client.logger.Warn("Dropping unparseable request", "error", err, "preview", truncate(raw, 80))
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of requests waiting on the intake list.
func (rq *RequestQueue) Depth(ctx context.Context) (int, error) {
	count, err := rq.client.rdb.LLen(ctx, RequestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
