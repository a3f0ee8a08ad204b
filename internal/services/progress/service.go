package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// Service serves progress snapshots from the stores.
type Service struct {
	tasks  database.TaskStore
	skills database.SkillProgressStore
	loc    *time.Location
	now    func() time.Time
}

// NewService creates a progress service evaluating dates in loc.
func NewService(tasks database.TaskStore, skills database.SkillProgressStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{tasks: tasks, skills: skills, loc: loc, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today returns the current calendar date in the service's zone.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now(), s.loc)
}

// Snapshot loads the user's history and skill aggregates and derives the
// progress snapshot. Nothing is cached; every call reflects the latest toggle.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID)
	if err != nil {
		return models.ProgressSnapshot{}, fmt.Errorf("failed to load task history: %w", err)
	}
	skills, err := s.skills.ListSkillProgress(ctx, userID)
	if err != nil {
		return models.ProgressSnapshot{}, fmt.Errorf("failed to load skill progress: %w", err)
	}
	return Calculate(tasks, skills, s.Today()), nil
}
