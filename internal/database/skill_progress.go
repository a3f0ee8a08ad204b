package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// SkillProgressRepository handles per-skill progress rows
type SkillProgressRepository struct {
	db *DB
}

// NewSkillProgressRepository creates a new skill progress repository
func NewSkillProgressRepository(db *DB) *SkillProgressRepository {
	return &SkillProgressRepository{db: db}
}

// ListSkillProgress returns the user's skills ordered by name
func (r *SkillProgressRepository) ListSkillProgress(ctx context.Context, userID uuid.UUID) ([]models.SkillProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, skill_name, completion_percentage, days_practiced, current_streak,
			longest_streak, last_activity_date, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
		ORDER BY skill_name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill progress: %w", err)
	}
	defer closeRows(rows)

	skills := make([]models.SkillProgress, 0)
	for rows.Next() {
		var s models.SkillProgress
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.SkillName,
			&s.CompletionPercentage,
			&s.DaysPracticed,
			&s.CurrentStreak,
			&s.LongestStreak,
			&s.LastActivityDate,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan skill progress: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill progress: %w", err)
	}
	return skills, nil
}

// UpsertSkillProgress writes a skill aggregate keyed by (user, skill name).
// The longest streak never moves backwards, whatever the caller sends.
func (r *SkillProgressRepository) UpsertSkillProgress(ctx context.Context, s *models.SkillProgress) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_progress (id, user_id, skill_name, completion_percentage, days_practiced,
			current_streak, longest_streak, last_activity_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, GREATEST($7, $6), $8, $9, $9)
		ON CONFLICT (user_id, skill_name) DO UPDATE
		SET completion_percentage = EXCLUDED.completion_percentage,
		    days_practiced = EXCLUDED.days_practiced,
		    current_streak = EXCLUDED.current_streak,
		    longest_streak = GREATEST(user_progress.longest_streak, EXCLUDED.longest_streak),
		    last_activity_date = EXCLUDED.last_activity_date,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, longest_streak, created_at, updated_at
	`,
		s.ID,
		s.UserID,
		s.SkillName,
		s.CompletionPercentage,
		s.DaysPracticed,
		s.CurrentStreak,
		s.LongestStreak,
		s.LastActivityDate,
		now,
	).Scan(&s.ID, &s.LongestStreak, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert skill progress: %w", err)
	}
	return nil
}
