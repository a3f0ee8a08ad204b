package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskGenerator is the part of tasks.Generator the worker drives.
type TaskGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (tasks.Result, error)
	Today() models.Date
}

var _ TaskGenerator = (*tasks.Generator)(nil)

// Processor executes generate_tasks and skill_progress jobs.
type Processor struct {
	generator TaskGenerator
	skills    tasks.SkillRefresher
	jobQueue  queue.JobQueue // for delayed re-enqueues
	logger    *zap.Logger
	now       func() time.Time
}

// NewProcessor creates a job processor. Retries are published to jobQueue as
// delayed copies; with a nil jobQueue a failed job is dead-lettered, since a
// requeued message keeps its old retry count.
func NewProcessor(generator TaskGenerator, skills tasks.SkillRefresher, jobQueue queue.JobQueue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		generator: generator,
		skills:    skills,
		jobQueue:  jobQueue,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessJob runs the job carried by msg and settles the message.
func (p *Processor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil {
		if err := msg.Nack(false); err != nil {
			p.logger.Warn("job_nack_failed", zap.Error(err))
		}
		return fmt.Errorf("message carries no job")
	}

	var err error
	switch job.Type {
	case queue.JobTypeGenerateTasks:
		err = p.generate(ctx, job)
	case queue.JobTypeSkillProgress:
		err = p.skillProgress(ctx, job)
	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return p.handleJobError(ctx, msg, job, err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (p *Processor) generate(ctx context.Context, job *queue.Job) error {
	if today := p.generator.Today(); job.Date != "" && job.Date != today {
		p.logger.Info("generate_job_stale",
			zap.String("job_id", job.ID.String()),
			zap.String("job_date", job.Date.String()),
			zap.String("today", today.String()),
		)
		return nil
	}

	res, err := p.generator.Generate(ctx, job.UserID)
	if err != nil {
		return err
	}
	p.logger.Info("generate_job_done",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Bool("created", res.Created),
		zap.Int("task_count", len(res.Tasks)),
	)
	return nil
}

func (p *Processor) skillProgress(ctx context.Context, job *queue.Job) error {
	if job.Date == "" {
		return errPermanent{fmt.Errorf("skill_progress job %s has no date", job.ID)}
	}
	return p.skills.Apply(ctx, job.UserID, job.Date)
}

// errPermanent marks failures that retrying cannot fix.
type errPermanent struct{ err error }

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

func isPermanent(err error) bool {
	var perm errPermanent
	return errors.As(err, &perm)
}

// handleJobError decides between dropping, dead-lettering and retrying.
func (p *Processor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("user_id", job.UserID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	}

	// The user must act first; nothing to retry.
	if errors.Is(err, tasks.ErrNoRoleSelected) || errors.Is(err, tasks.ErrNotAuthenticated) {
		p.logger.Info("job_skipped", fields...)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack skipped job: %w", ackErr)
		}
		return nil
	}

	if ai.IsQuotaError(err) || isPermanent(err) || !job.CanRetry() || p.jobQueue == nil {
		p.logger.Error("job_dead_lettered", fields...)
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job %s failed: %w", job.ID, err)
	}

	delay := ai.GetRetryDelay(err, job.RetryCount)
	retry := p.delayedCopy(job, delay)
	if enqueueErr := p.jobQueue.Enqueue(ctx, retry); enqueueErr != nil {
		p.logger.Warn("job_reenqueue_failed", append(fields, zap.NamedError("enqueue_error", enqueueErr))...)
		if nackErr := msg.Nack(true); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		p.logger.Warn("job_ack_failed", zap.Error(ackErr))
	}

	p.logger.Warn("job_retry_scheduled", append(fields, zap.Duration("delay", delay), zap.Bool("rate_limited", ai.IsRateLimitError(err)))...)
	return nil
}

// delayedCopy returns job with its retry count bumped and NotBefore moved
// delay into the future.
func (p *Processor) delayedCopy(job *queue.Job, delay time.Duration) *queue.Job {
	notBefore := p.now().Add(delay)
	retry := *job
	retry.NotBefore = &notBefore
	retry.IncrementRetry()
	return &retry
}
