package queue

import (
	"context"
	"fmt"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// SkillProgressPublisher defers skill aggregate refreshes to the worker.
type SkillProgressPublisher struct {
	queue JobQueue
}

// NewSkillProgressPublisher creates a publisher on q.
func NewSkillProgressPublisher(q JobQueue) *SkillProgressPublisher {
	return &SkillProgressPublisher{queue: q}
}

// Apply enqueues a skill_progress job for the user's date.
func (p *SkillProgressPublisher) Apply(ctx context.Context, userID uuid.UUID, date models.Date) error {
	if err := p.queue.Enqueue(ctx, NewSkillProgressJob(userID, date)); err != nil {
		return fmt.Errorf("failed to enqueue skill progress job: %w", err)
	}
	return nil
}
