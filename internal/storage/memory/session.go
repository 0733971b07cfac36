package memory

import (
	"context"
	"sort"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

// CreateSession enforces the per-user bound under the store mutex: count the
// user's unexpired sessions, evict the oldest when at or over the bound, then
// insert. Eviction order is created_at ascending with session id as the
// deterministic tie-break.
func (m *Storage) CreateSession(_ context.Context, session models.Session, maxSessions int) (*models.Session, *models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[session.UserID]; !ok {
		return nil, nil, storage.ErrUserNotFound
	}

	now := session.CreatedAt

	var active []models.Session
	for _, s := range m.sessions {
		if s.UserID == session.UserID && s.Active(now) {
			active = append(active, s)
		}
	}

	var evicted *models.Session
	if len(active) >= maxSessions {
		sort.Slice(active, func(i, j int) bool {
			if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
				return active[i].CreatedAt.Before(active[j].CreatedAt)
			}
			return active[i].ID < active[j].ID
		})
		oldest := active[0]
		delete(m.sessions, oldest.ID)
		evicted = &oldest
	}

	m.sessions[session.ID] = session
	created := session
	return &created, evicted, nil
}

func (m *Storage) GetActiveSessions(_ context.Context, userID string, now time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]models.Session, 0)
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active(now) {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

func (m *Storage) GetSessionByTokenHash(_ context.Context, tokenHash string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.RefreshTokenHash == tokenHash {
			found := s
			return &found, nil
		}
	}
	return nil, storage.ErrSessionNotFound
}

func (m *Storage) IsSessionActive(_ context.Context, sessionID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	return ok && s.Active(now), nil
}

func (m *Storage) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

func (m *Storage) DeleteAllUserSessions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *Storage) TouchSession(_ context.Context, sessionID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.LastAccessedAt = now
		m.sessions[sessionID] = s
	}
	return nil
}

func (m *Storage) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for id, s := range m.sessions {
		if !s.Active(now) {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}
