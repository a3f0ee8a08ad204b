// Package tasks orchestrates the daily task lifecycle: at most one generated
// batch per user per day, and owner-scoped completion toggles.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated is returned when no user identity is available.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRoleSelected is returned when generation is requested before the
	// user picked a target role.
	ErrNoRoleSelected = errors.New("no role selected")
	// ErrTaskNotFound is returned when a task does not exist or belongs to
	// someone else.
	ErrTaskNotFound = database.ErrNotFound
)

// MessageAlreadyGenerated accompanies a Result with Created=false.
const MessageAlreadyGenerated = "Tasks already generated for today"

// Result is the outcome of a generation request.
type Result struct {
	Date    models.Date
	Tasks   []models.Task
	Created bool
}

// Generator ensures exactly one task batch exists per user per day.
type Generator struct {
	profiles database.ProfileStore
	tasks    database.TaskStore
	skills   database.SkillProgressStore
	planner  ai.TaskPlanner
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewGenerator creates a generator evaluating "today" in loc.
func NewGenerator(profiles database.ProfileStore, tasks database.TaskStore, skills database.SkillProgressStore, planner ai.TaskPlanner, loc *time.Location, logger *zap.Logger) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		profiles: profiles,
		tasks:    tasks,
		skills:   skills,
		planner:  planner,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Today returns the current calendar date in the generator's zone.
func (g *Generator) Today() models.Date {
	return models.DateOf(g.now(), g.loc)
}

// Generate returns today's batch for the user, asking the planner for one
// when none exists. Planner failures leave the store untouched.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID) (Result, error) {
	if userID == uuid.Nil {
		return Result{}, ErrNotAuthenticated
	}

	profile, err := g.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return Result{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.HasRole() {
		return Result{}, ErrNoRoleSelected
	}

	today := g.Today()
	existing, err := g.tasks.ListTasksForDate(ctx, userID, today)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load today's tasks: %w", err)
	}
	if len(existing) > 0 {
		return Result{Date: today, Tasks: existing}, nil
	}

	skills, err := g.skills.ListSkillProgress(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load skill progress: %w", err)
	}

	ctx = ai.WithUserID(ctx, userID.String())
	drafts, err := g.planner.PlanTasks(ctx, ai.TaskRequest{
		Role:            profile.Role(""),
		Category:        profile.Category(""),
		DailyMinutes:    profile.Minutes(),
		ProgressSummary: ai.ProgressSummary(skills),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to plan tasks: %w", err)
	}

	stored, created, err := g.tasks.InsertBatch(ctx, userID, today, drafts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to store task batch: %w", err)
	}

	if created {
		g.logger.Info("task_batch_created",
			zap.String("user_id", userID.String()),
			zap.String("task_date", today.String()),
			zap.Int("task_count", len(stored)),
		)
	} else {
		g.logger.Info("task_batch_race_lost",
			zap.String("user_id", userID.String()),
			zap.String("task_date", today.String()),
		)
	}

	return Result{Date: today, Tasks: stored, Created: created}, nil
}

// TodayTasks returns today's batch, empty when nothing was generated yet.
func (g *Generator) TodayTasks(ctx context.Context, userID uuid.UUID) (models.Date, []models.Task, error) {
	if userID == uuid.Nil {
		return "", nil, ErrNotAuthenticated
	}
	today := g.Today()
	tasks, err := g.tasks.ListTasksForDate(ctx, userID, today)
	if err != nil {
		return today, nil, fmt.Errorf("failed to load today's tasks: %w", err)
	}
	return today, tasks, nil
}

// MaxHistoryDays bounds the range accepted by History, counting both ends.
const MaxHistoryDays = 366

// DefaultHistoryDays is the range used when History gets no bounds.
const DefaultHistoryDays = 30

// ErrInvalidRange is returned for inverted or oversized history ranges.
var ErrInvalidRange = errors.New("invalid date range")

// History returns tasks dated within [from, to]. Empty bounds default to the
// last DefaultHistoryDays days ending today.
func (g *Generator) History(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if to == "" {
		to = g.Today()
	}
	if from == "" {
		from = to.AddDays(-(DefaultHistoryDays - 1))
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%s is after %s: %w", from, to, ErrInvalidRange)
	}
	if from.AddDays(MaxHistoryDays - 1).Before(to) {
		return nil, fmt.Errorf("range exceeds %d days: %w", MaxHistoryDays, ErrInvalidRange)
	}

	tasks, err := g.tasks.ListTasksBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load task history: %w", err)
	}
	return tasks, nil
}
