package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"timeopt/internal/models"
)

// RedisSink publishes status snapshots to a key-value store for
// dashboard widgets that poll shared state. The key carries a TTL so a
// dead engine goes stale instead of lying forever.
type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSink creates a redis-backed status sink.
func NewRedisSink(addr, key string, ttl time.Duration) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
		ttl:    ttl,
	}
}

// WriteStatus serializes the snapshot into the configured key.
func (s *RedisSink) WriteStatus(ctx context.Context, status models.OptimizationStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write status to redis: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
