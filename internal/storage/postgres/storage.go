package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

const (
	createSessionMaxRetries = 3
	createSessionRetryDelay = 15 * time.Millisecond
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*SessionRepository
	*ProfileRepository
	*KYCRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                db,
		UserRepository:    NewUserRepository(db),
		SessionRepository: NewSessionRepository(db),
		ProfileRepository: NewProfileRepository(db),
		KYCRepository:     NewKYCRepository(db),
	}
}

// CreateSession inserts a session while holding the per-user bound.
//
// The whole read-count-evict-insert sequence runs in one transaction that
// first locks the owning user row (SELECT ... FOR UPDATE). The row lock
// serializes concurrent creates for the same user without blocking creates
// for other users, and doubles as the existence check for the owner.
// Transient serialization or deadlock failures are retried a bounded number
// of times before being surfaced as ErrConcurrencyConflict.
func (s *Storage) CreateSession(ctx context.Context, session models.Session, maxSessions int) (*models.Session, *models.Session, error) {
	var created, evicted *models.Session

	backoff := retry.WithMaxRetries(createSessionMaxRetries, retry.NewConstant(createSessionRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, e, err := s.createSessionOnce(ctx, session, maxSessions)
		if err != nil {
			if isTransientTxError(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		created, evicted = c, e
		return nil
	})
	if err != nil {
		if isTransientTxError(err) {
			return nil, nil, fmt.Errorf("create session for user %s: %w", session.UserID, storage.ErrConcurrencyConflict)
		}
		return nil, nil, err
	}

	return created, evicted, nil
}

func (s *Storage) createSessionOnce(ctx context.Context, session models.Session, maxSessions int) (*models.Session, *models.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the owner row. Concurrent creates for the same user queue here.
	var ownerID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, session.UserID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, storage.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("lock user row: %w", err)
	}

	now := session.CreatedAt

	var activeCount int
	err = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND expires_at > $2`,
		session.UserID, now,
	).Scan(&activeCount)
	if err != nil {
		return nil, nil, fmt.Errorf("count active sessions: %w", err)
	}

	var evicted *models.Session
	if activeCount >= maxSessions {
		// Oldest active session first; equal created_at breaks on id.
		query := `DELETE FROM sessions WHERE id = (
				SELECT id FROM sessions
				WHERE user_id = $1 AND expires_at > $2
				ORDER BY created_at ASC, id ASC
				LIMIT 1
			) RETURNING ` + sessionColumns
		evicted, err = scanSession(tx.QueryRowContext(ctx, query, session.UserID, now))
		if err != nil {
			return nil, nil, fmt.Errorf("evict oldest session: %w", err)
		}
	}

	created, err := insertSession(ctx, tx, session)
	if err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return created, evicted, nil
}

// DeleteUserCascade removes a user together with sessions, profile and KYC
// documents. Cascading is explicit here rather than schema-managed.
func (s *Storage) DeleteUserCascade(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM sessions WHERE user_id = $1`,
		`DELETE FROM kyc_documents WHERE user_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("cascade delete user: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("cascade delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrUserNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isTransientTxError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
