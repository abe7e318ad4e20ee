package storage

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

	"github.com/jwebster45206/turn-engine/pkg/state"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, discardLogger())
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_LoadAndSave(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	data, err := store.Load(ctx, "owner-1", "player")
	require.NoError(t, err)
	assert.Nil(t, data, "absent record is not an error")

	require.NoError(t, store.Save(ctx, "owner-1", "player", []byte(`{"name":"Wren"}`)))

	data, err = store.Load(ctx, "owner-1", "player")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Wren"}`, string(data))

	raw, err := mr.Get("entity:owner-1:player")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Wren"}`, raw)

	data, err = store.Load(ctx, "owner-2", "player")
	require.NoError(t, err)
	assert.Nil(t, data, "owners are isolated")
}

func TestRedisStore_SaveBatch(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBatch(ctx, "owner-1", map[string][]byte{
		"player":          []byte(`{"location":"harbor"}`),
		"world":           []byte(`{"weather":"fog"}`),
		"location:harbor": []byte(`{"id":"harbor"}`),
	}))

	for _, key := range []string{"entity:owner-1:player", "entity:owner-1:world", "entity:owner-1:location:harbor"} {
		assert.True(t, mr.Exists(key), key)
	}

	assert.Error(t, store.SaveBatch(ctx, "", map[string][]byte{"player": []byte(`{}`)}))
	assert.NoError(t, store.SaveBatch(ctx, "owner-1", nil))
}

func TestRedisStore_SaveBatchFailureWritesNothing(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	mr.SetError("READONLY simulated failure")
	err := store.SaveBatch(ctx, "owner-1", map[string][]byte{
		"player": []byte(`{}`),
		"world":  []byte(`{}`),
	})
	assert.Error(t, err)

	mr.SetError("")
	assert.False(t, mr.Exists("entity:owner-1:player"))
	assert.False(t, mr.Exists("entity:owner-1:world"))
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupStore(t)
	store.WithTTL(time.Hour)

	require.NoError(t, store.Save(context.Background(), "owner-1", "world", []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL("entity:owner-1:world"))
}

func TestRedisStore_SessionCommit(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess := state.NewSession(store, "owner-1")
	state.Put(sess, state.WorldID, &state.World{Weather: "storm"})
	require.NoError(t, sess.Commit(ctx))

	world, err := state.Load[state.World](ctx, state.NewSession(store, "owner-1"), state.WorldID)
	require.NoError(t, err)
	require.NotNil(t, world)
	assert.Equal(t, "storm", world.Weather)
}
