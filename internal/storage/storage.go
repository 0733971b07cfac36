package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/creatorly/identity-service/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrDocumentNotFound = errors.New("kyc document not found")

	// ErrConcurrencyConflict is surfaced after bounded retries of a
	// transient serialization or deadlock failure.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")
)

// DBTX lets repositories run on either *sql.DB or *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	UserRepository
	SessionRepository
	ProfileRepository
	KYCRepository

	// DeleteUserCascade removes a user with its sessions, profile and KYC
	// documents in one atomic unit.
	DeleteUserCascade(ctx context.Context, userID string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string, now time.Time) error
}

// SessionRepository is the authoritative record of live sessions.
//
// CreateSession enforces the per-user concurrency bound: it atomically counts
// the user's unexpired sessions and, when the bound is reached, deletes the
// oldest one (created_at ascending, session id as tie-break) before inserting.
// Calls for the same user are serialized against each other; calls for
// different users do not block each other. The evicted session, if any, is
// returned alongside the created one.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session, maxSessions int) (*models.Session, *models.Session, error)
	GetActiveSessions(ctx context.Context, userID string, now time.Time) ([]models.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	IsSessionActive(ctx context.Context, sessionID string, now time.Time) (bool, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	TouchSession(ctx context.Context, sessionID string, now time.Time) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile models.Profile) error
}

type KYCRepository interface {
	CreateKYCDocument(ctx context.Context, doc models.KYCDocument) (*models.KYCDocument, error)
	GetKYCDocument(ctx context.Context, id string) (*models.KYCDocument, error)
	ListKYCDocumentsByStatus(ctx context.Context, status models.KYCStatus) ([]models.KYCDocument, error)
	ListKYCDocumentsByUser(ctx context.Context, userID string) ([]models.KYCDocument, error)
	UpdateKYCReview(ctx context.Context, doc models.KYCDocument) error
}
