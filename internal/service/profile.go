package service

import (
	"context"
	"time"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

// ProfileService handles the role-specific profile variants. Field updates
// are filtered per kind so a host cannot set brand fields and so on.
type ProfileService struct {
	storage storage.Storage
	now     func() time.Time
}

func NewProfileService(store storage.Storage) *ProfileService {
	return &ProfileService{storage: store, now: time.Now}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.storage.GetProfile(ctx, userID)
}

func (s *ProfileService) ListRoles() []models.Role {
	return models.AssignableRoles()
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.DisplayName = req.DisplayName
	profile.Bio = req.Bio

	switch profile.Kind {
	case models.ProfileKindHost:
		profile.StreamCategory = req.StreamCategory
	case models.ProfileKindAgency:
		profile.AgencyName = req.AgencyName
	case models.ProfileKindBrand:
		profile.BrandWebsite = req.BrandWebsite
	case models.ProfileKindGifter:
		// gifters carry only the shared fields
	}
	profile.UpdatedAt = s.now()

	if err := s.storage.UpdateProfile(ctx, *profile); err != nil {
		return nil, err
	}
	return profile, nil
}
