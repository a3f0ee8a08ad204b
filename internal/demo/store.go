package demo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of the task, skill, profile and
// activity stores. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	tasks    []models.Task
	skills   map[uuid.UUID]map[string]models.SkillProgress
	profiles map[uuid.UUID]*models.Profile
	activity map[uuid.UUID]time.Time
}

var (
	_ database.TaskStore                       = (*Store)(nil)
	_ database.SkillProgressStore              = (*Store)(nil)
	_ database.ProfileStore                    = (*Store)(nil)
	_ database.UserActivityRepositoryInterface = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		skills:   make(map[uuid.UUID]map[string]models.SkillProgress),
		profiles: make(map[uuid.UUID]*models.Profile),
		activity: make(map[uuid.UUID]time.Time),
	}
}

// NewSeededStore returns a store holding the demo user's profile, a batch of
// tasks dated today and three skill records.
func NewSeededStore(today models.Date) *Store {
	s := NewStore()
	now := time.Now()

	name, category, role, minutes := FullName, RoleCategory, SelectedRole, DailyMinutes
	s.profiles[UserID] = &models.Profile{
		UserID:              UserID,
		FullName:            &name,
		RoleCategory:        &category,
		SelectedRole:        &role,
		DailyTimeMinutes:    &minutes,
		OnboardingCompleted: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	for i, f := range taskFixtures {
		s.tasks = append(s.tasks, models.Task{
			ID:              uuid.New(),
			UserID:          UserID,
			TaskDate:        today,
			Position:        i,
			Title:           f.title,
			Description:     f.description,
			TaskType:        f.taskType,
			DurationMinutes: f.minutes,
			PlatformName:    optional(f.platform),
			PlatformURL:     optional(f.url),
			SkillName:       optional(f.skill),
			Completed:       f.completed,
			CreatedAt:       now,
		})
	}

	s.skills[UserID] = make(map[string]models.SkillProgress)
	for _, f := range skillFixtures {
		last := today
		s.skills[UserID][f.name] = models.SkillProgress{
			ID:                   uuid.New(),
			UserID:               UserID,
			SkillName:            f.name,
			CompletionPercentage: f.pct,
			DaysPracticed:        f.days,
			CurrentStreak:        f.current,
			LongestStreak:        f.longest,
			LastActivityDate:     &last,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sortTasks(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		if c := cmp.Compare(a.TaskDate, b.TaskDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
}

func (s *Store) filter(keep func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out
}

// ListTasks returns the user's whole history, oldest first.
func (s *Store) ListTasks(_ context.Context, userID uuid.UUID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t models.Task) bool { return t.UserID == userID }), nil
}

// ListTasksForDate returns one day's batch in batch order.
func (s *Store) ListTasksForDate(_ context.Context, userID uuid.UUID, date models.Date) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t models.Task) bool { return t.UserID == userID && t.TaskDate == date }), nil
}

// ListTasksBetween returns tasks dated within [from, to], newest day first.
func (s *Store) ListTasksBetween(_ context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(t models.Task) bool {
		return t.UserID == userID && !t.TaskDate.Before(from) && !to.Before(t.TaskDate)
	})
	slices.SortStableFunc(out, func(a, b models.Task) int {
		return cmp.Compare(b.TaskDate, a.TaskDate)
	})
	return out, nil
}

// InsertBatch checks for an existing batch and inserts under one lock, so
// concurrent callers for the same day store exactly one batch.
func (s *Store) InsertBatch(_ context.Context, userID uuid.UUID, date models.Date, drafts []models.TaskDraft) ([]models.Task, bool, error) {
	if len(drafts) == 0 {
		return nil, false, fmt.Errorf("cannot insert an empty task batch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.filter(func(t models.Task) bool { return t.UserID == userID && t.TaskDate == date })
	if len(existing) > 0 {
		return existing, false, nil
	}

	now := time.Now()
	batch := make([]models.Task, 0, len(drafts))
	for i, d := range drafts {
		batch = append(batch, models.Task{
			ID:              uuid.New(),
			UserID:          userID,
			TaskDate:        date,
			Position:        i,
			Title:           d.Title,
			Description:     d.Description,
			TaskType:        d.TaskType,
			DurationMinutes: d.DurationMinutes,
			PlatformName:    optional(d.PlatformName),
			PlatformURL:     optional(d.PlatformURL),
			SkillName:       optional(d.SkillName),
			CreatedAt:       now,
		})
	}
	s.tasks = append(s.tasks, batch...)
	return slices.Clone(batch), true, nil
}

// UpdateCompletion sets the completed flag of a task owned by userID.
func (s *Store) UpdateCompletion(_ context.Context, taskID, userID uuid.UUID, completed bool) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID && s.tasks[i].UserID == userID {
			s.tasks[i].Completed = completed
			t := s.tasks[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", taskID, database.ErrNotFound)
}

// ListSkillProgress returns the user's skills ordered by name.
func (s *Store) ListSkillProgress(_ context.Context, userID uuid.UUID) ([]models.SkillProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SkillProgress, 0, len(s.skills[userID]))
	for _, rec := range s.skills[userID] {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b models.SkillProgress) int {
		return cmp.Compare(a.SkillName, b.SkillName)
	})
	return out, nil
}

// UpsertSkillProgress stores a skill aggregate. As in the database the
// longest streak never moves backwards.
func (s *Store) UpsertSkillProgress(_ context.Context, rec *models.SkillProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.skills[rec.UserID]
	if !ok {
		byName = make(map[string]models.SkillProgress)
		s.skills[rec.UserID] = byName
	}

	now := time.Now()
	if prev, ok := byName[rec.SkillName]; ok {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
		rec.LongestStreak = max(rec.LongestStreak, prev.LongestStreak)
	} else {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		rec.CreatedAt = now
	}
	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)
	rec.UpdatedAt = now
	byName[rec.SkillName] = *rec
	return nil
}

// GetProfile returns database.ErrNotFound for unknown users.
func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, database.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// UpdateProfile applies the non-nil fields of update, creating the profile
// when needed.
func (s *Store) UpdateProfile(_ context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p, ok := s.profiles[userID]
	if !ok {
		p = &models.Profile{UserID: userID, CreatedAt: now}
		s.profiles[userID] = p
	}
	if update.FullName != nil {
		p.FullName = clone(update.FullName)
	}
	if update.RoleCategory != nil {
		p.RoleCategory = clone(update.RoleCategory)
	}
	if update.SelectedRole != nil {
		p.SelectedRole = clone(update.SelectedRole)
	}
	if update.DailyTimeMinutes != nil {
		p.DailyTimeMinutes = clone(update.DailyTimeMinutes)
	}
	if update.OnboardingCompleted != nil {
		p.OnboardingCompleted = *update.OnboardingCompleted
	}
	p.UpdatedAt = now

	cp := *p
	return &cp, nil
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

// UpdateLastInteraction records API activity.
func (s *Store) UpdateLastInteraction(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[userID] = time.Now()
	return nil
}

// ListActiveSince returns users active at or after since that have a role.
func (s *Store) ListActiveSince(_ context.Context, since time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0)
	for id, at := range s.activity {
		if at.Before(since) || !s.profiles[id].HasRole() {
			continue
		}
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	return out, nil
}
