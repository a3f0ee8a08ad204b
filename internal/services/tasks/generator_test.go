package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTasks is a minimal in-memory TaskStore with an atomic batch claim.
type memTasks struct {
	mu        sync.Mutex
	tasks     []models.Task
	insertErr error
}

var _ database.TaskStore = (*memTasks)(nil)

func (m *memTasks) ListTasks(_ context.Context, userID uuid.UUID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) ListTasksForDate(_ context.Context, userID uuid.UUID, date models.Date) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forDate(userID, date), nil
}

func (m *memTasks) forDate(userID uuid.UUID, date models.Date) []models.Task {
	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == userID && t.TaskDate == date {
			out = append(out, t)
		}
	}
	return out
}

func (m *memTasks) ListTasksBetween(_ context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == userID && !t.TaskDate.Before(from) && !to.Before(t.TaskDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) InsertBatch(_ context.Context, userID uuid.UUID, date models.Date, drafts []models.TaskDraft) ([]models.Task, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, false, m.insertErr
	}
	if existing := m.forDate(userID, date); len(existing) > 0 {
		return existing, false, nil
	}
	out := make([]models.Task, 0, len(drafts))
	for i, d := range drafts {
		skill := d.SkillName
		out = append(out, models.Task{
			ID: uuid.New(), UserID: userID, TaskDate: date, Position: i,
			Title: d.Title, TaskType: d.TaskType, DurationMinutes: d.DurationMinutes,
			SkillName: &skill,
		})
	}
	m.tasks = append(m.tasks, out...)
	return out, true, nil
}

func (m *memTasks) UpdateCompletion(_ context.Context, taskID, userID uuid.UUID, completed bool) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == taskID && m.tasks[i].UserID == userID {
			m.tasks[i].Completed = completed
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, database.ErrNotFound
}

type memProfiles struct {
	profiles map[uuid.UUID]*models.Profile
	err      error
}

func (m *memProfiles) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (m *memProfiles) UpdateProfile(context.Context, uuid.UUID, models.ProfileUpdate) (*models.Profile, error) {
	return nil, errors.New("not implemented")
}

type memSkills struct {
	records []models.SkillProgress
}

func (m *memSkills) ListSkillProgress(context.Context, uuid.UUID) ([]models.SkillProgress, error) {
	return m.records, nil
}

func (m *memSkills) UpsertSkillProgress(_ context.Context, rec *models.SkillProgress) error {
	m.records = append(m.records, *rec)
	return nil
}

// mockPlanner is a func-field TaskPlanner.
type mockPlanner struct {
	calls    atomic.Int32
	lastReq  ai.TaskRequest
	mu       sync.Mutex
	planFunc func(ctx context.Context, req ai.TaskRequest) ([]models.TaskDraft, error)
}

func (m *mockPlanner) PlanTasks(ctx context.Context, req ai.TaskRequest) ([]models.TaskDraft, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()
	if m.planFunc != nil {
		return m.planFunc(ctx, req)
	}
	return drafts(3), nil
}

func drafts(n int) []models.TaskDraft {
	out := make([]models.TaskDraft, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.TaskDraft{
			Title: fmt.Sprintf("Task %d", i+1), TaskType: models.TaskTypeLearn,
			DurationMinutes: 20, SkillName: "React",
		})
	}
	return out
}

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)

func newTestGenerator(profile *models.Profile, planner ai.TaskPlanner) (*Generator, *memTasks, uuid.UUID) {
	userID := uuid.New()
	profiles := &memProfiles{profiles: map[uuid.UUID]*models.Profile{}}
	if profile != nil {
		profile.UserID = userID
		profiles.profiles[userID] = profile
	}
	store := &memTasks{}
	g := NewGenerator(profiles, store, &memSkills{}, planner, time.UTC, nil).WithClock(func() time.Time { return fixedNow })
	return g, store, userID
}

func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	planner := &mockPlanner{}
	g, store, userID := newTestGenerator(&models.Profile{SelectedRole: strPtr("Frontend Developer")}, planner)

	first, err := g.Generate(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Len(t, first.Tasks, 3)
	assert.Equal(t, models.Date("2024-01-03"), first.Date)

	second, err := g.Generate(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Tasks, second.Tasks)
	assert.Equal(t, int32(1), planner.calls.Load(), "planner must not run for an existing batch")

	all, _ := store.ListTasks(context.Background(), userID)
	assert.Len(t, all, 3)
}

func TestGenerate_ConcurrentRequestsStoreOneBatch(t *testing.T) {
	t.Parallel()

	g, store, userID := newTestGenerator(&models.Profile{SelectedRole: strPtr("Data Analyst")}, &mockPlanner{})

	const callers = 8
	var wg sync.WaitGroup
	created := atomic.Int32{}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := g.Generate(context.Background(), userID)
			if err == nil && res.Created {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	all, _ := store.ListTasks(context.Background(), userID)
	assert.Len(t, all, 3)
}

func TestGenerate_PassesProfileToPlanner(t *testing.T) {
	t.Parallel()

	planner := &mockPlanner{}
	minutes := 120
	g, _, userID := newTestGenerator(&models.Profile{
		SelectedRole:     strPtr("Cloud Engineer"),
		RoleCategory:     strPtr("Cloud & DevOps"),
		DailyTimeMinutes: &minutes,
	}, planner)

	_, err := g.Generate(context.Background(), userID)
	require.NoError(t, err)

	planner.mu.Lock()
	defer planner.mu.Unlock()
	assert.Equal(t, "Cloud Engineer", planner.lastReq.Role)
	assert.Equal(t, "Cloud & DevOps", planner.lastReq.Category)
	assert.Equal(t, 120, planner.lastReq.DailyMinutes)
	assert.Equal(t, ai.NewLearnerSummary, planner.lastReq.ProgressSummary)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")

	tests := []struct {
		name      string
		profile   *models.Profile
		userID    func(uuid.UUID) uuid.UUID
		planErr   error
		insertErr error
		wantErr   error
	}{
		{name: "no identity", profile: &models.Profile{SelectedRole: strPtr("QA")}, userID: func(uuid.UUID) uuid.UUID { return uuid.Nil }, wantErr: ErrNotAuthenticated},
		{name: "no profile", profile: nil, wantErr: ErrNoRoleSelected},
		{name: "empty role", profile: &models.Profile{SelectedRole: strPtr("")}, wantErr: ErrNoRoleSelected},
		{name: "rate limited", profile: &models.Profile{SelectedRole: strPtr("QA")}, planErr: &ai.APIError{StatusCode: 429}, wantErr: ai.ErrRateLimited},
		{name: "quota", profile: &models.Profile{SelectedRole: strPtr("QA")}, planErr: &ai.APIError{StatusCode: 402, IsPermanent: true}, wantErr: ai.ErrQuotaExceeded},
		{name: "malformed", profile: &models.Profile{SelectedRole: strPtr("QA")}, planErr: fmt.Errorf("bad: %w", ai.ErrMalformedResponse), wantErr: ai.ErrMalformedResponse},
		{name: "store failure", profile: &models.Profile{SelectedRole: strPtr("QA")}, insertErr: storeErr, wantErr: storeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			planner := &mockPlanner{}
			if tt.planErr != nil {
				planner.planFunc = func(context.Context, ai.TaskRequest) ([]models.TaskDraft, error) {
					return nil, tt.planErr
				}
			}
			g, store, userID := newTestGenerator(tt.profile, planner)
			store.insertErr = tt.insertErr
			if tt.userID != nil {
				userID = tt.userID(userID)
			}

			_, err := g.Generate(context.Background(), userID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			if userID != uuid.Nil {
				all, _ := store.ListTasks(context.Background(), userID)
				assert.Empty(t, all, "no partial write on failure")
			}
		})
	}
}

func TestGenerate_ProfileStoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	g := NewGenerator(&memProfiles{err: boom}, &memTasks{}, &memSkills{}, &mockPlanner{}, nil, nil)
	_, err := g.Generate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoRoleSelected)
}

func TestTodayTasks(t *testing.T) {
	t.Parallel()

	g, _, userID := newTestGenerator(&models.Profile{SelectedRole: strPtr("UI Designer")}, &mockPlanner{})

	date, tasks, err := g.TodayTasks(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, models.Date("2024-01-03"), date)
	assert.Empty(t, tasks)

	_, err = g.Generate(context.Background(), userID)
	require.NoError(t, err)

	_, tasks, err = g.TodayTasks(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestHistory_Range(t *testing.T) {
	t.Parallel()

	g, _, userID := newTestGenerator(nil, &mockPlanner{})

	tests := []struct {
		name     string
		from, to models.Date
		wantErr  bool
	}{
		{name: "defaults"},
		{name: "explicit", from: "2023-12-01", to: "2023-12-31"},
		{name: "inverted", from: "2024-01-02", to: "2024-01-01", wantErr: true},
		{name: "too long", from: "2020-01-01", to: "2024-01-01", wantErr: true},
		{name: "longest allowed", from: "2024-01-01", to: "2024-12-31"},
		{name: "one day over", from: "2024-01-01", to: "2025-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := g.History(context.Background(), userID, tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}
