package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/turn-engine/pkg/queue"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewClient(rdb, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestEventQueue_EnqueueAndDrain(t *testing.T) {
	client, mr := setupTestRedis(t)
	eq := NewEventQueue(client)
	ctx := context.Background()

	events := []string{
		"The bell tolls beneath the water.",
		"A gull screams overhead.",
		"Someone is following you.",
	}
	for _, e := range events {
		require.NoError(t, eq.Enqueue(ctx, "owner-1", e))
	}

	queued, err := mr.List("story-events:owner-1")
	require.NoError(t, err)
	assert.Equal(t, events, queued)

	drained, err := eq.Drain(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, events, drained)

	drained, err = eq.Drain(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestEventQueue_OwnersAreIsolated(t *testing.T) {
	client, mr := setupTestRedis(t)
	eq := NewEventQueue(client)
	ctx := context.Background()

	require.NoError(t, eq.Enqueue(ctx, "a", "for a"))
	require.NoError(t, eq.Enqueue(ctx, "b", "for b"))

	drained, err := eq.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"for a"}, drained)

	queued, err := mr.List("story-events:b")
	require.NoError(t, err)
	assert.Equal(t, []string{"for b"}, queued)
}

func TestMemoryEventQueue(t *testing.T) {
	eq := NewMemoryEventQueue()
	ctx := context.Background()

	require.NoError(t, eq.Enqueue(ctx, "a", "one"))
	require.NoError(t, eq.Enqueue(ctx, "a", "two"))
	require.NoError(t, eq.Enqueue(ctx, "b", "other"))

	drained, err := eq.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, drained)

	drained, err = eq.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, drained)

	drained, err = eq.Drain(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, drained)
}

func TestRequestQueue_RoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	rq := NewRequestQueue(client)
	ctx := context.Background()

	first := queue.NewTurnRequest("owner-1", "I ring the bell", queue.TurnKindChat)
	second := queue.NewTurnRequest("owner-2", "I attack", queue.TurnKindCombat)
	require.NoError(t, rq.EnqueueRequest(ctx, &first))
	require.NoError(t, rq.EnqueueRequest(ctx, &second))

	depth, err := rq.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	got, err := rq.DequeueRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.RequestID, got.RequestID)
	assert.Equal(t, "I ring the bell", got.RawInput)

	got, err = rq.BlockingDequeueRequest(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.RequestID, got.RequestID)
	assert.Equal(t, queue.TurnKindCombat, got.TurnKind)

	got, err = rq.DequeueRequest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRequestQueue_RejectsInvalid(t *testing.T) {
	client, mr := setupTestRedis(t)
	rq := NewRequestQueue(client)

	bad := queue.NewTurnRequest("", "hello", queue.TurnKindChat)
	assert.Error(t, rq.EnqueueRequest(context.Background(), &bad))
	assert.False(t, mr.Exists(RequestsKey))
}

func TestRequestQueue_BadPayload(t *testing.T) {
	client, mr := setupTestRedis(t)
	rq := NewRequestQueue(client)

	_, err := mr.Lpush(RequestsKey, "not json")
	require.NoError(t, err)

	_, err = rq.DequeueRequest(context.Background())
	assert.Error(t, err)
}
