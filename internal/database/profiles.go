package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

const profileColumns = `user_id, full_name, role_category, selected_role, daily_time_minutes,
	onboarding_completed, created_at, updated_at`

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.UserID,
		&p.FullName,
		&p.RoleCategory,
		&p.SelectedRole,
		&p.DailyTimeMinutes,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// GetProfile retrieves the profile of a user
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of update, creating the profile
// when it does not exist yet
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	now := time.Now()
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, full_name, role_category, selected_role, daily_time_minutes,
			onboarding_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, false), $7, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = COALESCE($2, profiles.full_name),
		    role_category = COALESCE($3, profiles.role_category),
		    selected_role = COALESCE($4, profiles.selected_role),
		    daily_time_minutes = COALESCE($5, profiles.daily_time_minutes),
		    onboarding_completed = COALESCE($6, profiles.onboarding_completed),
		    updated_at = $7
		RETURNING `+profileColumns,
		userID,
		update.FullName,
		update.RoleCategory,
		update.SelectedRole,
		update.DailyTimeMinutes,
		update.OnboardingCompleted,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
