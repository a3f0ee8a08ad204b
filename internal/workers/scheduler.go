package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchedulerConfig controls daily pre-generation.
type SchedulerConfig struct {
	// Location is the zone calendar days and Hour are evaluated in.
	Location *time.Location
	// Hour is the local hour after which today's jobs are enqueued.
	Hour int
	// ActivityWindow limits pre-generation to recently active users.
	ActivityWindow time.Duration
}

// Scheduler enqueues one generate_tasks job per recently active user per day.
type Scheduler struct {
	jobQueue     queue.JobQueue
	activityRepo database.UserActivityRepositoryInterface
	cfg          SchedulerConfig
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	lastRun models.Date
}

// NewScheduler creates a new scheduler
func NewScheduler(jobQueue queue.JobQueue, activityRepo database.UserActivityRepositoryInterface, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobQueue:     jobQueue,
		activityRepo: activityRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// window returns when today's generation may start and the last instant it
// is still today.
func (s *Scheduler) window(now time.Time) (start, end time.Time) {
	local := now.In(s.cfg.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cfg.Location)
	start = midnight.Add(time.Duration(s.cfg.Hour) * time.Hour)
	end = midnight.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// ScheduleDaily enqueues today's generation jobs once the configured hour
// has passed. Later calls on the same day do nothing. It returns the number
// of jobs enqueued.
func (s *Scheduler) ScheduleDaily(ctx context.Context) (int, error) {
	now := s.now()
	start, end := s.window(now)
	if now.Before(start) {
		return 0, nil
	}
	today := models.DateOf(now, s.cfg.Location)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == today {
		return 0, nil
	}

	users, err := s.activityRepo.ListActiveSince(ctx, now.Add(-s.cfg.ActivityWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	enqueued := 0
	for _, userID := range users {
		if err := s.enqueue(ctx, userID, today, start, end); err != nil {
			s.logger.Warn("generate_job_enqueue_failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}
	s.lastRun = today

	s.logger.Info("scheduled_generation_jobs",
		zap.String("task_date", today.String()),
		zap.Int("user_count", len(users)),
		zap.Int("enqueued", enqueued),
	)
	return enqueued, nil
}

func (s *Scheduler) enqueue(ctx context.Context, userID uuid.UUID, date models.Date, notBefore, notAfter time.Time) error {
	job := queue.NewGenerateTasksJob(userID, date, notBefore, notAfter)
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue generation job: %w", err)
	}
	return nil
}

// Start checks every interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if _, err := s.ScheduleDaily(ctx); err != nil {
		s.logger.Warn("schedule_daily_failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ScheduleDaily(ctx); err != nil {
				s.logger.Warn("schedule_daily_failed", zap.Error(err))
			}
		}
	}
}
