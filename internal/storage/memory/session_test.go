package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

func newStorageWithUser(t *testing.T, userID string) *Storage {
	t.Helper()
	st := NewStorage()
	_, err := st.CreateUser(context.Background(), models.User{
		ID:        userID,
		Email:     userID + "@example.com",
		Role:      models.RoleHost,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return st
}

func mkSession(id, userID string, createdAt, expiresAt time.Time) models.Session {
	return models.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: "hash-" + id,
		CreatedAt:        createdAt,
		ExpiresAt:        expiresAt,
		LastAccessedAt:   createdAt,
	}
}

func TestCreateSessionUnknownUser(t *testing.T) {
	st := NewStorage()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _, err := st.CreateSession(context.Background(), mkSession("s1", "ghost", base, base.Add(time.Hour)), 2)
	if !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestFIFOEviction(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := base.Add(24 * time.Hour)

	_, evicted, err := st.CreateSession(ctx, mkSession("a", "u1", base, exp), 2)
	if err != nil || evicted != nil {
		t.Fatalf("first create: evicted=%v err=%v", evicted, err)
	}
	_, evicted, err = st.CreateSession(ctx, mkSession("b", "u1", base.Add(time.Minute), exp), 2)
	if err != nil || evicted != nil {
		t.Fatalf("second create: evicted=%v err=%v", evicted, err)
	}

	// Third create hits the bound; the oldest (a) must go.
	_, evicted, err = st.CreateSession(ctx, mkSession("c", "u1", base.Add(2*time.Minute), exp), 2)
	if err != nil {
		t.Fatalf("third create: %v", err)
	}
	if evicted == nil || evicted.ID != "a" {
		t.Fatalf("want eviction of a, got %+v", evicted)
	}

	active, err := st.GetActiveSessions(ctx, "u1", base.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("get active sessions: %v", err)
	}
	if len(active) != 2 || active[0].ID != "b" || active[1].ID != "c" {
		t.Fatalf("want [b c], got %+v", active)
	}
}

func TestEvictionTieBreakOnSessionID(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := base.Add(24 * time.Hour)

	// Same created_at; the lexicographically smaller id must be evicted.
	if _, _, err := st.CreateSession(ctx, mkSession("s-b", "u1", base, exp), 2); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.CreateSession(ctx, mkSession("s-a", "u1", base, exp), 2); err != nil {
		t.Fatal(err)
	}

	_, evicted, err := st.CreateSession(ctx, mkSession("s-c", "u1", base.Add(time.Second), exp), 2)
	if err != nil {
		t.Fatal(err)
	}
	if evicted == nil || evicted.ID != "s-a" {
		t.Fatalf("want eviction of s-a, got %+v", evicted)
	}
}

func TestExpiredSessionsExcludedFromBound(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Two expired rows and one active one; a new create must not evict.
	if _, _, err := st.CreateSession(ctx, mkSession("old1", "u1", base.Add(-48*time.Hour), base.Add(-time.Hour)), 2); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.CreateSession(ctx, mkSession("old2", "u1", base.Add(-47*time.Hour), base.Add(-time.Minute)), 2); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.CreateSession(ctx, mkSession("live", "u1", base, base.Add(24*time.Hour)), 2); err != nil {
		t.Fatal(err)
	}

	_, evicted, err := st.CreateSession(ctx, mkSession("new", "u1", base.Add(time.Minute), base.Add(24*time.Hour)), 2)
	if err != nil {
		t.Fatal(err)
	}
	if evicted != nil {
		t.Fatalf("expired rows must not trigger eviction, evicted %+v", evicted)
	}

	active, err := st.GetActiveSessions(ctx, "u1", base.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("want 2 active sessions, got %d", len(active))
	}
	for _, s := range active {
		if s.ID == "old1" || s.ID == "old2" {
			t.Fatalf("expired session %s listed as active", s.ID)
		}
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := st.CreateSession(ctx, mkSession("s1", "u1", base, base.Add(time.Hour)), 2); err != nil {
		t.Fatal(err)
	}

	if err := st.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := st.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}

	active, _ := st.GetActiveSessions(ctx, "u1", base)
	if len(active) != 0 {
		t.Fatalf("want no sessions, got %d", len(active))
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := st.CreateSession(ctx, mkSession("dead", "u1", base.Add(-2*time.Hour), base.Add(-time.Hour)), 5); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.CreateSession(ctx, mkSession("live", "u1", base, base.Add(time.Hour)), 5); err != nil {
		t.Fatal(err)
	}

	count, err := st.DeleteExpiredSessions(ctx, base)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("want 1 reaped session, got %d", count)
	}

	if ok, _ := st.IsSessionActive(ctx, "live", base); !ok {
		t.Fatal("live session must survive cleanup")
	}
	if ok, _ := st.IsSessionActive(ctx, "dead", base); ok {
		t.Fatal("dead session must be gone")
	}
}

func TestIsSessionActiveExpiry(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := st.CreateSession(ctx, mkSession("s1", "u1", base, base.Add(time.Hour)), 2); err != nil {
		t.Fatal(err)
	}

	if ok, _ := st.IsSessionActive(ctx, "s1", base.Add(30*time.Minute)); !ok {
		t.Fatal("session should be active before expiry")
	}
	if ok, _ := st.IsSessionActive(ctx, "s1", base.Add(2*time.Hour)); ok {
		t.Fatal("session should be inactive after expiry")
	}
	if ok, _ := st.IsSessionActive(ctx, "missing", base); ok {
		t.Fatal("missing session cannot be active")
	}
}

func TestGetActiveSessionsUnknownUser(t *testing.T) {
	st := NewStorage()

	active, err := st.GetActiveSessions(context.Background(), "ghost", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("want empty result, got %d", len(active))
	}
}

func TestConcurrentCreatesRespectBound(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := mkSession(
				fmt.Sprintf("s-%02d", i),
				"u1",
				base.Add(time.Duration(i)*time.Millisecond),
				base.Add(24*time.Hour),
			)
			if _, _, err := st.CreateSession(ctx, s, 2); err != nil {
				t.Errorf("create session %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	active, err := st.GetActiveSessions(ctx, "u1", base.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("bound violated: %d active sessions after %d concurrent creates", len(active), workers)
	}
}

func TestTouchSession(t *testing.T) {
	ctx := context.Background()
	st := newStorageWithUser(t, "u1")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := st.CreateSession(ctx, mkSession("s1", "u1", base, base.Add(time.Hour)), 2); err != nil {
		t.Fatal(err)
	}

	touched := base.Add(10 * time.Minute)
	if err := st.TouchSession(ctx, "s1", touched); err != nil {
		t.Fatal(err)
	}
	// Missing session is a no-op, not an error.
	if err := st.TouchSession(ctx, "missing", touched); err != nil {
		t.Fatal(err)
	}

	active, _ := st.GetActiveSessions(ctx, "u1", base)
	if len(active) != 1 || !active[0].LastAccessedAt.Equal(touched) {
		t.Fatalf("last accessed not updated: %+v", active)
	}
}
