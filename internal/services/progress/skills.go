package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdvanceSkill recomputes one skill aggregate from the tasks tagged with that
// skill, given that activity on date just changed. Percentage and days
// practiced are recomputed from scratch; the current streak is advanced
// incrementally and only when date has a completed task. The longest streak
// is a rolling maximum and never decreases.
func AdvanceSkill(rec models.SkillProgress, skillTasks []models.Task, date models.Date) models.SkillProgress {
	completed := models.CountCompleted(skillTasks)
	rec.CompletionPercentage = CompletionRate(completed, len(skillTasks))

	practiced := make(map[models.Date]struct{})
	activeOnDate := false
	for i := range skillTasks {
		if !skillTasks[i].Completed {
			continue
		}
		practiced[skillTasks[i].TaskDate] = struct{}{}
		if skillTasks[i].TaskDate == date {
			activeOnDate = true
		}
	}
	rec.DaysPracticed = len(practiced)

	if activeOnDate {
		switch {
		case rec.LastActivityDate == nil:
			rec.CurrentStreak = 1
		case *rec.LastActivityDate == date:
			rec.CurrentStreak = max(rec.CurrentStreak, 1)
		case *rec.LastActivityDate == date.AddDays(-1):
			rec.CurrentStreak++
		case rec.LastActivityDate.Before(date):
			rec.CurrentStreak = 1
		}
		if rec.LastActivityDate == nil || rec.LastActivityDate.Before(date) {
			d := date
			rec.LastActivityDate = &d
		}
	}

	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)
	return rec
}

// SkillUpdater maintains the per-skill aggregates after completion changes.
type SkillUpdater struct {
	tasks  database.TaskStore
	skills database.SkillProgressStore
	logger *zap.Logger
}

// NewSkillUpdater creates a skill updater.
func NewSkillUpdater(tasks database.TaskStore, skills database.SkillProgressStore, logger *zap.Logger) *SkillUpdater {
	return &SkillUpdater{tasks: tasks, skills: skills, logger: logger}
}

// Apply refreshes every skill that has a task on date.
func (u *SkillUpdater) Apply(ctx context.Context, userID uuid.UUID, date models.Date) error {
	tasks, err := u.tasks.ListTasks(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load tasks for skill update: %w", err)
	}
	existing, err := u.skills.ListSkillProgress(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load skill progress: %w", err)
	}

	bySkill := make(map[string][]models.Task)
	touched := make(map[string]bool)
	var order []string
	for i := range tasks {
		name := skillKey(tasks[i].SkillName)
		if name == "" {
			continue
		}
		if _, ok := bySkill[name]; !ok {
			order = append(order, name)
		}
		bySkill[name] = append(bySkill[name], tasks[i])
		if tasks[i].TaskDate == date {
			touched[name] = true
		}
	}

	records := make(map[string]models.SkillProgress, len(existing))
	for _, rec := range existing {
		records[rec.SkillName] = rec
	}

	for _, key := range order {
		if !touched[key] {
			continue
		}
		rec, ok := records[key]
		if !ok {
			rec = models.SkillProgress{UserID: userID, SkillName: key}
		}
		next := AdvanceSkill(rec, bySkill[key], date)
		if err := u.skills.UpsertSkillProgress(ctx, &next); err != nil {
			return fmt.Errorf("failed to store progress for skill %q: %w", key, err)
		}
		u.logger.Debug("skill_progress_updated",
			zap.String("user_id", userID.String()),
			zap.String("skill", key),
			zap.Int("completion_percentage", next.CompletionPercentage),
			zap.Int("current_streak", next.CurrentStreak),
			zap.Int("longest_streak", next.LongestStreak),
		)
	}
	return nil
}

func skillKey(name *string) string {
	if name == nil {
		return ""
	}
	return strings.TrimSpace(*name)
}
