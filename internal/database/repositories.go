package database

import (
	"context"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// TaskStore persists daily tasks. Implementations must provide
// read-after-write consistency for a single user.
type TaskStore interface {
	// ListTasks returns the user's whole task history.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	// ListTasksForDate returns the batch for one date in batch order.
	ListTasksForDate(ctx context.Context, userID uuid.UUID, date models.Date) ([]models.Task, error)
	// ListTasksBetween returns tasks with from <= date <= to.
	ListTasksBetween(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error)
	// InsertBatch stores drafts as the batch for (user, date). When a batch
	// already exists the stored batch is returned with created=false and
	// nothing is written.
	InsertBatch(ctx context.Context, userID uuid.UUID, date models.Date, drafts []models.TaskDraft) (tasks []models.Task, created bool, err error)
	// UpdateCompletion sets the completed flag of a task owned by userID.
	// Returns ErrNotFound when no such task belongs to the user.
	UpdateCompletion(ctx context.Context, taskID, userID uuid.UUID, completed bool) (*models.Task, error)
}

// SkillProgressStore persists per-skill aggregates.
type SkillProgressStore interface {
	ListSkillProgress(ctx context.Context, userID uuid.UUID) ([]models.SkillProgress, error)
	UpsertSkillProgress(ctx context.Context, record *models.SkillProgress) error
}

// ProfileStore persists onboarding choices.
type ProfileStore interface {
	// GetProfile returns ErrNotFound when the user has no profile yet.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)
}

// UserActivityRepositoryInterface tracks API activity for the scheduler.
type UserActivityRepositoryInterface interface {
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
	ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskStore                       = (*TaskRepository)(nil)
	_ SkillProgressStore              = (*SkillProgressRepository)(nil)
	_ ProfileStore                    = (*ProfileRepository)(nil)
	_ UserActivityRepositoryInterface = (*UserActivityRepository)(nil)
)
