package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
	"github.com/creatorly/identity-service/internal/util"
)

// SessionService owns the session lifecycle: bounded creation with FIFO
// eviction, lookup, revocation and expiry reaping. The per-user bound itself
// is enforced inside the storage transaction; this layer supplies ids and
// timestamps and reports evictions.
type SessionService struct {
	storage     storage.SessionRepository
	tokens      *TokenService
	webhook     *WebhookService
	log         *zap.SugaredLogger
	maxSessions int
	refreshTTL  time.Duration

	// now is injectable for deterministic expiry and eviction tests.
	now func() time.Time
}

func NewSessionService(
	store storage.SessionRepository,
	tokens *TokenService,
	webhook *WebhookService,
	cfg *util.SessionConfig,
	log *zap.SugaredLogger,
) *SessionService {
	return &SessionService{
		storage:     store,
		tokens:      tokens,
		webhook:     webhook,
		log:         log,
		maxSessions: cfg.MaxSessionsPerUser,
		refreshTTL:  tokens.RefreshTTL(),
		now:         time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// CreateSession persists a new session for the refresh token. When the user
// is already at the session bound the oldest active session is evicted in
// the same transaction; the caller never sees the bound as an error.
func (s *SessionService) CreateSession(
	ctx context.Context,
	userID, refreshToken, deviceInfo, ipAddress, userAgent string,
) (*models.Session, error) {
	now := s.now()
	session := models.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RefreshTokenHash: s.tokens.HashRefreshToken(refreshToken),
		DeviceInfo:       deviceInfo,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.refreshTTL),
		LastAccessedAt:   now,
	}

	created, evicted, err := s.storage.CreateSession(ctx, session, s.maxSessions)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if evicted != nil {
		s.log.Infow("evicted oldest session",
			"userID", userID,
			"evictedSessionID", evicted.ID,
			"evictedCreatedAt", evicted.CreatedAt,
		)
		s.webhook.NotifySessionEvicted(ctx, map[string]interface{}{
			"user_id":          userID,
			"evicted_session":  evicted.ID,
			"evicted_device":   evicted.DeviceInfo,
			"new_session":      created.ID,
			"new_session_ip":   created.IPAddress,
			"new_session_time": created.CreatedAt,
		})
	}

	return created, nil
}

// FindActiveSessionByRefreshToken resolves a presented refresh token to its
// live session. An expired but not yet reaped session reads as not found.
func (s *SessionService) FindActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	session, err := s.storage.GetSessionByTokenHash(ctx, s.tokens.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if !session.Active(s.now()) {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) GetActiveSessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.storage.GetActiveSessions(ctx, userID, s.now())
}

func (s *SessionService) IsSessionActive(ctx context.Context, sessionID string) (bool, error) {
	return s.storage.IsSessionActive(ctx, sessionID, s.now())
}

// DeleteSession is idempotent; deleting an already-gone session succeeds.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *SessionService) DeleteAllSessions(ctx context.Context, userID string) error {
	return s.storage.DeleteAllUserSessions(ctx, userID)
}

// TouchSession is best-effort bookkeeping; failures are logged, never fatal.
func (s *SessionService) TouchSession(ctx context.Context, sessionID string) {
	if err := s.storage.TouchSession(ctx, sessionID, s.now()); err != nil {
		s.log.Warnw("failed to touch session", "sessionID", sessionID, "error", err)
	}
}

// CleanupExpiredSessions reaps every session past its expiry. Safe to run
// concurrently with session creation.
func (s *SessionService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.storage.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return count, nil
}
