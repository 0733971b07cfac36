package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

const sessionColumns = `id, user_id, refresh_token_hash, device_info, ip_address, user_agent, created_at, expires_at, last_accessed_at`

type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&s.DeviceInfo,
		&s.IPAddress,
		&s.UserAgent,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// insertSession writes one session row; bound enforcement lives in
// Storage.CreateSession, which calls this inside its transaction.
func insertSession(ctx context.Context, db storage.DBTX, s models.Session) (*models.Session, error) {
	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + sessionColumns
	created, err := scanSession(db.QueryRowContext(
		ctx,
		query,
		s.ID,
		s.UserID,
		s.RefreshTokenHash,
		s.DeviceInfo,
		s.IPAddress,
		s.UserAgent,
		s.CreatedAt,
		s.ExpiresAt,
		s.LastAccessedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return created, nil
}

func (r *SessionRepository) GetActiveSessions(ctx context.Context, userID string, now time.Time) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("get active sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get active sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE refresh_token_hash = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by token hash: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) IsSessionActive(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	var active bool
	query := `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND expires_at > $2)`
	if err := r.db.QueryRowContext(ctx, query, sessionID, now).Scan(&active); err != nil {
		return false, fmt.Errorf("is session active: %w", err)
	}
	return active, nil
}

// DeleteSession is idempotent: deleting an absent session is not an error.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteAllUserSessions(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// TouchSession updates last_accessed_at; a missing row is a no-op.
func (r *SessionRepository) TouchSession(ctx context.Context, sessionID string, now time.Time) error {
	query := `UPDATE sessions SET last_accessed_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID, now); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return affected, nil
}
