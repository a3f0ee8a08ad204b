package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	job := NewJob(JobTypeSkillProgress, userID, "2024-03-15")

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeSkillProgress {
		t.Errorf("Expected job type %s, got %s", JobTypeSkillProgress, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, job.UserID)
	}
	if job.Date != "2024-03-15" {
		t.Errorf("Expected date 2024-03-15, got %s", job.Date)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, job.MaxRetries)
	}
}

func TestNewGenerateTasksJob_Window(t *testing.T) {
	t.Parallel()

	now := time.Now()
	job := NewGenerateTasksJob(uuid.New(), models.DateOf(now, time.UTC), now.Add(-time.Minute), now.Add(time.Hour))

	if job.Type != JobTypeGenerateTasks {
		t.Errorf("Expected type %s, got %s", JobTypeGenerateTasks, job.Type)
	}
	if !job.ShouldProcess() {
		t.Error("Expected job inside its window to be processable")
	}
	if job.IsExpired() {
		t.Error("Expected job not to be expired")
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no time constraints", want: true},
		{name: "not before in past", notBefore: timePtr(now.Add(-time.Hour)), want: true},
		{name: "not before in future", notBefore: timePtr(now.Add(time.Hour)), want: false},
		{name: "not after in past", notAfter: timePtr(now.Add(-time.Hour)), want: false},
		{name: "inside window", notBefore: timePtr(now.Add(-time.Hour)), notAfter: timePtr(now.Add(time.Hour)), want: true},
		{name: "window in future", notBefore: timePtr(now.Add(time.Hour)), notAfter: timePtr(now.Add(2 * time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeGenerateTasks, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{name: "no expiration", want: false},
		{name: "expired", notAfter: timePtr(now.Add(-time.Hour)), want: true},
		{name: "not expired", notAfter: timePtr(now.Add(time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeGenerateTasks, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retries(t *testing.T) {
	t.Parallel()

	job := NewSkillProgressJob(uuid.New(), "2024-03-15")
	for i := 0; i < DefaultMaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
	if job.RetryCount != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, job.RetryCount)
	}
}

func TestJob_JSONKeepsDate(t *testing.T) {
	t.Parallel()

	job := NewSkillProgressJob(uuid.New(), "2024-03-15")
	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Date != job.Date || decoded.Type != job.Type || decoded.UserID != job.UserID {
		t.Errorf("decoded job = %+v, want %+v", decoded, job)
	}
}

// mockQueue is a JobQueue that records enqueued jobs.
type mockQueue struct {
	enqueued   []*Job
	enqueueErr error
}

func (m *mockQueue) Enqueue(_ context.Context, job *Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockQueue) Consume(context.Context, int) (<-chan *Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockQueue) Close() error                      { return nil }
func (m *mockQueue) HealthCheck(context.Context) error { return nil }

func TestSkillProgressPublisher(t *testing.T) {
	t.Parallel()

	q := &mockQueue{}
	pub := NewSkillProgressPublisher(q)
	userID := uuid.New()

	if err := pub.Apply(context.Background(), userID, "2024-03-15"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(q.enqueued) != 1 {
		t.Fatalf("Expected one job, got %d", len(q.enqueued))
	}
	got := q.enqueued[0]
	if got.Type != JobTypeSkillProgress || got.UserID != userID || got.Date != "2024-03-15" {
		t.Errorf("unexpected job %+v", got)
	}

	q.enqueueErr = errors.New("broker down")
	if err := pub.Apply(context.Background(), userID, "2024-03-15"); err == nil {
		t.Error("Expected enqueue failure to be returned")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
