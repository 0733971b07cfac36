package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginRateLimiter throttles credential attempts per client key using a
// fixed window counter with a block period after the limit is hit.
type LoginRateLimiter struct {
	client    *redis.Client
	limit     int
	interval  time.Duration
	blockTime time.Duration
}

func NewLoginRateLimiter(client *redis.Client, limit int, interval, blockTime time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		client:    client,
		limit:     limit,
		interval:  interval,
		blockTime: blockTime,
	}
}

// Allow counts one attempt for key and reports whether it may proceed.
func (l *LoginRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	blockKey := "ratelimit:block:" + key
	blocked, err := l.client.Exists(ctx, blockKey).Result()
	if err != nil {
		return false, fmt.Errorf("check rate limit block: %w", err)
	}
	if blocked > 0 {
		return false, nil
	}

	countKey := "ratelimit:count:" + key
	count, err := l.client.Incr(ctx, countKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, countKey, l.interval).Err(); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}

	if count > int64(l.limit) {
		if err := l.client.Set(ctx, blockKey, "blocked", l.blockTime).Err(); err != nil {
			return false, fmt.Errorf("set rate limit block: %w", err)
		}
		return false, nil
	}
	return true, nil
}
