package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares a fixed-window counter across instances. INCR plus a
// first-writer EXPIRE keeps the window consistent without scripting.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit"}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := fmt.Sprintf("%s:%s:%d", s.prefix, key, time.Now().UnixNano()/int64(window))

	count, err := s.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		// First request of the window owns the expiry.
		if err := s.client.Expire(ctx, bucket, window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	return count <= int64(limit), nil
}
