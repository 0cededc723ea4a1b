package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments a per-user monthly counter and returns the new value.
type Counter interface {
	Incr(ctx context.Context, uid string, month string) (int64, error)
}

// RedisStore keeps one counter per user and month. Keys expire after the month ends.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a RedisStore backed by the given client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Incr bumps quota:<uid>:<month> and sets its expiry on first use.
func (s *RedisStore) Incr(ctx context.Context, uid string, month string) (int64, error) {
	key := fmt.Sprintf("quota:%s:%s", uid, month)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, 32*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
