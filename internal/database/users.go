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

const userColumns = `id, email, provider_id, name, email_verified, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.ProviderID, &u.Name, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpsertByProviderID returns the user bound to an identity provider subject,
// creating it on first sight and refreshing email/name otherwise. A profile
// row is created alongside a new user.
func (r *UserRepository) UpsertByProviderID(ctx context.Context, providerID, email string, name *string, emailVerified bool) (*models.User, error) {
	var user *models.User
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		u, err := scanUser(tx.QueryRowContext(ctx, `
			INSERT INTO users (id, email, provider_id, name, email_verified, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (provider_id) DO UPDATE
			SET email = EXCLUDED.email,
			    name = COALESCE(EXCLUDED.name, users.name),
			    email_verified = EXCLUDED.email_verified,
			    updated_at = EXCLUDED.updated_at
			RETURNING `+userColumns,
			uuid.New(), email, providerID, name, emailVerified, now,
		))
		if err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, full_name, onboarding_completed, created_at, updated_at)
			VALUES ($1, $2, false, $3, $3)
			ON CONFLICT (user_id) DO NOTHING
		`, u.ID, name, now)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
