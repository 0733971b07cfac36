package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

const profileColumns = `user_id, kind, display_name, bio, stream_category, agency_name, brand_website, updated_at`

type ProfileRepository struct {
	db storage.DBTX
}

func NewProfileRepository(db storage.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p models.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.Kind,
		p.DisplayName,
		p.Bio,
		p.StreamCategory,
		p.AgencyName,
		p.BrandWebsite,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Kind,
		&p.DisplayName,
		&p.Bio,
		&p.StreamCategory,
		&p.AgencyName,
		&p.BrandWebsite,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, p models.Profile) error {
	query := `UPDATE profiles
		SET display_name = $2, bio = $3, stream_category = $4, agency_name = $5, brand_website = $6, updated_at = $7
		WHERE user_id = $1`
	res, err := r.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.DisplayName,
		p.Bio,
		p.StreamCategory,
		p.AgencyName,
		p.BrandWebsite,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
