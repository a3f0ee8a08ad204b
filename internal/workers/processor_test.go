package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/google/uuid"
)

const testToday models.Date = "2024-01-03"

// mockMessage records how a message was settled.
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job { return m.job }

var _ queue.MessageInterface = (*mockMessage)(nil)

type mockGenerator struct {
	generateFunc func(ctx context.Context, userID uuid.UUID) (tasks.Result, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, userID uuid.UUID) (tasks.Result, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID)
	}
	return tasks.Result{Date: testToday, Created: true}, nil
}

func (m *mockGenerator) Today() models.Date { return testToday }

var _ TaskGenerator = (*mockGenerator)(nil)

type mockRefresher struct {
	applyFunc func(ctx context.Context, userID uuid.UUID, date models.Date) error
	dates     []models.Date
}

func (m *mockRefresher) Apply(ctx context.Context, userID uuid.UUID, date models.Date) error {
	m.dates = append(m.dates, date)
	if m.applyFunc != nil {
		return m.applyFunc(ctx, userID, date)
	}
	return nil
}

var _ tasks.SkillRefresher = (*mockRefresher)(nil)

// mockJobQueue captures enqueued jobs.
type mockJobQueue struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	jobs        []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error                      { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

var _ queue.JobQueue = (*mockJobQueue)(nil)

func TestProcessor_GenerateTasks(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	p := NewProcessor(gen, &mockRefresher{}, &mockJobQueue{}, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeGenerateTasks, uuid.New(), testToday)}

	if err := p.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("Expected one Generate call, got %d", gen.calls)
	}
	if !msg.acked || msg.nacked {
		t.Errorf("Expected ack only, got acked=%v nacked=%v", msg.acked, msg.nacked)
	}
}

func TestProcessor_StaleGenerateJobIsDropped(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	p := NewProcessor(gen, &mockRefresher{}, &mockJobQueue{}, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeGenerateTasks, uuid.New(), testToday.AddDays(-1))}

	if err := p.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("Expected stale job not to generate, got %d calls", gen.calls)
	}
	if !msg.acked {
		t.Error("Expected stale job to be acked")
	}
}

func TestProcessor_SkillProgress(t *testing.T) {
	t.Parallel()

	refresher := &mockRefresher{}
	p := NewProcessor(&mockGenerator{}, refresher, &mockJobQueue{}, nil)
	msg := &mockMessage{job: queue.NewSkillProgressJob(uuid.New(), "2024-01-02")}

	if err := p.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if len(refresher.dates) != 1 || refresher.dates[0] != "2024-01-02" {
		t.Errorf("Expected refresh for 2024-01-02, got %v", refresher.dates)
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
}

func TestProcessor_Errors(t *testing.T) {
	t.Parallel()

	rateLimited := &ai.APIError{StatusCode: 429, Message: "slow down"}
	quota := &ai.APIError{StatusCode: 402, Message: "no credits", IsPermanent: true}

	tests := []struct {
		name        string
		genErr      error
		retryCount  int
		wantErr     bool
		wantAck     bool
		wantNack    bool
		wantRequeue bool
		wantRetry   bool
	}{
		{name: "no role is skipped", genErr: tasks.ErrNoRoleSelected, wantAck: true},
		{name: "quota goes to DLQ", genErr: quota, wantErr: true, wantNack: true},
		{name: "rate limit is delayed", genErr: rateLimited, wantAck: true, wantRetry: true},
		{name: "malformed is delayed", genErr: ai.ErrMalformedResponse, wantAck: true, wantRetry: true},
		{name: "exhausted retries go to DLQ", genErr: rateLimited, retryCount: queue.DefaultMaxRetries, wantErr: true, wantNack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &mockGenerator{generateFunc: func(context.Context, uuid.UUID) (tasks.Result, error) {
				return tasks.Result{}, tt.genErr
			}}
			q := &mockJobQueue{}
			p := NewProcessor(gen, &mockRefresher{}, q, nil)
			fixed := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
			p.now = func() time.Time { return fixed }

			job := queue.NewJob(queue.JobTypeGenerateTasks, uuid.New(), testToday)
			job.RetryCount = tt.retryCount
			msg := &mockMessage{job: job}

			err := p.ProcessJob(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProcessJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if msg.acked != tt.wantAck || msg.nacked != tt.wantNack || msg.requeue != tt.wantRequeue {
				t.Errorf("settled acked=%v nacked=%v requeue=%v", msg.acked, msg.nacked, msg.requeue)
			}
			if tt.wantRetry {
				if len(q.jobs) != 1 {
					t.Fatalf("Expected one re-enqueued job, got %d", len(q.jobs))
				}
				retry := q.jobs[0]
				if retry.ID != job.ID || retry.RetryCount != job.RetryCount+1 {
					t.Errorf("unexpected retry job %+v", retry)
				}
				wantAt := fixed.Add(ai.GetRetryDelay(tt.genErr, job.RetryCount))
				if retry.NotBefore == nil || !retry.NotBefore.Equal(wantAt) {
					t.Errorf("NotBefore = %v, want %v", retry.NotBefore, wantAt)
				}
			} else if len(q.jobs) != 0 {
				t.Errorf("Expected no re-enqueue, got %d", len(q.jobs))
			}
		})
	}
}

func TestProcessor_ReenqueueFailureRequeues(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{generateFunc: func(context.Context, uuid.UUID) (tasks.Result, error) {
		return tasks.Result{}, ai.ErrMalformedResponse
	}}
	q := &mockJobQueue{enqueueFunc: func(context.Context, *queue.Job) error {
		return errors.New("broker down")
	}}
	p := NewProcessor(gen, &mockRefresher{}, q, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeGenerateTasks, uuid.New(), testToday)}

	if err := p.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error when re-enqueue fails")
	}
	if !msg.nacked || !msg.requeue {
		t.Errorf("Expected nack with requeue, got nacked=%v requeue=%v", msg.nacked, msg.requeue)
	}
}

func TestProcessor_WithoutQueueDeadLetters(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{generateFunc: func(context.Context, uuid.UUID) (tasks.Result, error) {
		return tasks.Result{}, &ai.APIError{StatusCode: 429, Message: "slow down"}
	}}
	p := NewProcessor(gen, &mockRefresher{}, nil, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeGenerateTasks, uuid.New(), testToday)}

	if err := p.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for a job that cannot be retried")
	}
	if !msg.nacked || msg.requeue {
		t.Errorf("Expected dead-letter nack, got nacked=%v requeue=%v", msg.nacked, msg.requeue)
	}
}

func TestProcessor_InvalidJobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		job  *queue.Job
	}{
		{name: "unknown type", job: queue.NewJob("reprocess_user", uuid.New(), testToday)},
		{name: "skill job without date", job: queue.NewJob(queue.JobTypeSkillProgress, uuid.New(), "")},
		{name: "no job", job: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewProcessor(&mockGenerator{}, &mockRefresher{}, &mockJobQueue{}, nil)
			msg := &mockMessage{job: tt.job}
			if err := p.ProcessJob(context.Background(), msg); err == nil {
				t.Error("Expected error")
			}
			if !msg.nacked || msg.requeue {
				t.Errorf("Expected dead-letter nack, got nacked=%v requeue=%v", msg.nacked, msg.requeue)
			}
		})
	}
}
