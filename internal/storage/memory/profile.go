package memory

import (
	"context"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

func (m *Storage) CreateProfile(_ context.Context, p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.UserID] = p
	return nil
}

func (m *Storage) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &p, nil
}

func (m *Storage) UpdateProfile(_ context.Context, p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.UserID]; !ok {
		return storage.ErrUserNotFound
	}
	m.profiles[p.UserID] = p
	return nil
}
