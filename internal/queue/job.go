package queue

import (
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeGenerateTasks generates a user's task batch for a date
	JobTypeGenerateTasks JobType = "generate_tasks"
	// JobTypeSkillProgress refreshes a user's skill aggregates for a date
	JobTypeSkillProgress JobType = "skill_progress"
)

// DefaultMaxRetries is the retry budget of a new job.
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	Date       models.Date    `json:"date"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job for the user's date
func NewJob(jobType JobType, userID uuid.UUID, date models.Date) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Date:       date,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// NewGenerateTasksJob creates a generation job valid only within [notBefore, notAfter].
func NewGenerateTasksJob(userID uuid.UUID, date models.Date, notBefore, notAfter time.Time) *Job {
	job := NewJob(JobTypeGenerateTasks, userID, date)
	job.NotBefore = &notBefore
	job.NotAfter = &notAfter
	return job
}

// NewSkillProgressJob creates a skill refresh job.
func NewSkillProgressJob(userID uuid.UUID, date models.Date) *Job {
	return NewJob(JobTypeSkillProgress, userID, date)
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
