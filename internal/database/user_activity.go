package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserActivityRepository handles user activity database operations
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new user activity repository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// UpdateLastInteraction records that the user just called the API
func (r *UserActivityRepository) UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_activity (user_id, last_api_interaction, created_at, updated_at)
		VALUES ($1, $2, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_api_interaction = EXCLUDED.last_api_interaction,
		    updated_at = EXCLUDED.updated_at
	`, userID, now)
	if err != nil {
		return fmt.Errorf("failed to update last interaction: %w", err)
	}
	return nil
}

// ListActiveSince returns users that interacted at or after since and have
// a role selected, i.e. the users daily pre-generation can serve
func (r *UserActivityRepository) ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.user_id
		FROM user_activity a
		JOIN profiles p ON p.user_id = a.user_id
		WHERE a.last_api_interaction >= $1
		  AND p.selected_role IS NOT NULL
		  AND p.selected_role <> ''
		ORDER BY a.user_id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer closeRows(rows)

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return userIDs, nil
}
