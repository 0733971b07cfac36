package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/storage/memory"
	"github.com/creatorly/identity-service/internal/util"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]struct{}
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{revoked: make(map[string]struct{})}
}

func (b *memBlacklist) InvalidateToken(_ context.Context, token string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = struct{}{}
	return nil
}

func (b *memBlacklist) IsTokenInvalidated(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[token]
	return ok, nil
}

func testTokenConfig() *util.TokenConfig {
	return &util.TokenConfig{
		JwtSecretKey:   []byte("test-jwt-secret"),
		SessionHMACKey: []byte("test-hmac-pepper"),
		Issuer:         "identity-service",
		Audience:       "creatorly-platform",
		AccessTTL:      15 * time.Minute,
		RefreshTTL:     30 * 24 * time.Hour,
	}
}

type testEnv struct {
	clock    *fakeClock
	storage  *memory.Storage
	tokens   *TokenService
	sessions *SessionService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop().Sugar()

	st := memory.NewStorage()
	tokens := NewTokenService(testTokenConfig(), newMemBlacklist()).WithClock(clock.Now)
	webhook := NewWebhookService(log, "")
	sessions := NewSessionService(
		st,
		tokens,
		webhook,
		&util.SessionConfig{MaxSessionsPerUser: 2, CleanupInterval: time.Hour},
		log,
	).WithClock(clock.Now)
	auth := NewAuthService(st, tokens, sessions, log).WithClock(clock.Now)

	return &testEnv{
		clock:    clock,
		storage:  st,
		tokens:   tokens,
		sessions: sessions,
		auth:     auth,
	}
}
