// Package storage holds the production Store backed by Redis and the
// filesystem scenario catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// RedisStore implements storage.Store with one Redis string per record.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStore implements Store interface
var _ storage.Store = (*RedisStore)(nil)

// NewRedisStore uses an established connection. Records never expire
// unless WithTTL is set.
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// WithTTL expires every record ttl after its last write.
func (r *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	r.ttl = ttl
	return r
}

func recordKey(ownerID, recordID string) string {
	return fmt.Sprintf("entity:%s:%s", ownerID, recordID)
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Record operations

func (r *RedisStore) Load(ctx context.Context, ownerID, recordID string) ([]byte, error) {
	data, err := r.client.Get(ctx, recordKey(ownerID, recordID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load record", "owner_id", ownerID, "record_id", recordID, "error", err)
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, ownerID, recordID string, data []byte) error {
	if err := r.client.Set(ctx, recordKey(ownerID, recordID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save record", "owner_id", ownerID, "record_id", recordID, "error", err)
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// SaveBatch writes every record inside one MULTI/EXEC transaction.
func (r *RedisStore) SaveBatch(ctx context.Context, ownerID string, records map[string][]byte) error {
	if ownerID == "" {
		return errors.New("owner id is required")
	}
	if len(records) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for recordID, data := range records {
			pipe.Set(ctx, recordKey(ownerID, recordID), data, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save batch", "owner_id", ownerID, "records", len(records), "error", err)
		return fmt.Errorf("failed to save batch: %w", err)
	}

	r.logger.Debug("Saved batch", "owner_id", ownerID, "records", len(records))
	return nil
}
