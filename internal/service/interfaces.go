package service

import (
	"context"
	"time"
)

type TokenBlacklist interface {
	InvalidateToken(ctx context.Context, token string, expiration time.Duration) error
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
