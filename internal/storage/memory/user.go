package memory

import (
	"context"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

func (m *Storage) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.Email]; ok {
		return nil, storage.ErrEmailTaken
	}
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	created := user
	return &created, nil
}

func (m *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &user, nil
}

func (m *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	user := m.users[id]
	return &user, nil
}

func (m *Storage) UpdatePasswordHash(_ context.Context, userID, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	m.users[userID] = user
	return nil
}

func (m *Storage) DeleteUserCascade(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	for id, d := range m.kycDocs {
		if d.UserID == userID {
			delete(m.kycDocs, id)
		}
	}
	delete(m.profiles, userID)
	delete(m.byEmail, user.Email)
	delete(m.users, userID)
	return nil
}
