package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ports.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

// Get returns nil without error when the user has no stored profile yet.
func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT birth_year, gender, school_id
		FROM user_profiles
		WHERE user_id = $1
	`
	var profile domain.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.BirthYear, &profile.Gender, &profile.SchoolID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, userID uuid.UUID, profile domain.Profile) error {
	query := `
		INSERT INTO user_profiles (user_id, birth_year, gender, school_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET birth_year = EXCLUDED.birth_year,
		    gender = EXCLUDED.gender,
		    school_id = EXCLUDED.school_id,
		    updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, profile.BirthYear, profile.Gender, profile.SchoolID)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
