package tasks

import (
	"context"
	"fmt"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SkillRefresher brings the skill aggregates up to date after completion
// changed on date. progress.SkillUpdater applies it inline; the queue
// publisher defers it to the worker.
type SkillRefresher interface {
	Apply(ctx context.Context, userID uuid.UUID, date models.Date) error
}

// Completer flips task completion flags.
type Completer struct {
	tasks   database.TaskStore
	refresh SkillRefresher
	logger  *zap.Logger
}

// NewCompleter creates a completer. refresh may be nil.
func NewCompleter(tasks database.TaskStore, refresh SkillRefresher, logger *zap.Logger) *Completer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{tasks: tasks, refresh: refresh, logger: logger}
}

// SetCompleted sets one task's completed flag. The update is scoped by both
// task and owner, so a foreign task reports ErrTaskNotFound. Refreshing the
// skill aggregates is best effort and never fails the toggle.
func (c *Completer) SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*models.Task, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	task, err := c.tasks.UpdateCompletion(ctx, taskID, userID, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}

	if c.refresh != nil && task.SkillName != nil {
		if err := c.refresh.Apply(ctx, userID, task.TaskDate); err != nil {
			c.logger.Warn("skill_progress_refresh_failed",
				zap.String("user_id", userID.String()),
				zap.String("task_id", taskID.String()),
				zap.Error(err),
			)
		}
	}

	return task, nil
}
