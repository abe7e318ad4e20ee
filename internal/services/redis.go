package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisService owns the Redis connection shared by the entity store, the
// queues, and the event broadcaster.
type RedisService struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisService connects to redisURL, which may be a redis:// URL or a
// bare host:port.
func NewRedisService(redisURL string, logger *slog.Logger) (*RedisService, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	return &RedisService{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Ping checks the connection once. It satisfies the health handler's
// Pinger.
func (r *RedisService) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisService) Close() error {
	err := r.client.Close()
	if err != nil {
		r.logger.Warn("closing redis", "error", err)
	}
	return err
}

// GetClient exposes the underlying client for the store, queues, and
// broadcaster.
func (r *RedisService) GetClient() *redis.Client {
	return r.client
}

// maxBackoff caps the wait between connection attempts.
const maxBackoff = 10 * time.Second

// WaitForConnection pings up to attempts times, doubling the delay between
// tries from initial up to maxBackoff.
func (r *RedisService) WaitForConnection(ctx context.Context, attempts int, initial time.Duration) error {
	delay := initial
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = r.Ping(ctx); lastErr == nil {
			r.logger.Info("redis ready", "attempts", attempt)
			return nil
		}
		if attempt == attempts {
			break
		}
		r.logger.Debug("redis not ready", "attempt", attempt, "retry_in", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("waiting for redis: %w", ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, maxBackoff)
	}
	return fmt.Errorf("redis unavailable after %d attempts: %w", attempts, lastErr)
}
