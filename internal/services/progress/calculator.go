// Package progress derives completion and streak figures from a user's task
// history and maintains the per-skill aggregates.
package progress

import (
	"cmp"
	"math"
	"slices"

	"github.com/benvon/career-coach/internal/models"
)

// StreakLookbackDays bounds how far back the current streak walk looks.
const StreakLookbackDays = 365

// Calendar maps each date that has at least one task to whether every task
// on that date is completed. Dates without tasks are absent.
type Calendar map[models.Date]bool

// BuildCalendar buckets tasks by their task date. A date is true only while
// every task seen for it is completed; one incomplete task pins it to false.
func BuildCalendar(tasks []models.Task) Calendar {
	cal := make(Calendar)
	for i := range tasks {
		day := tasks[i].TaskDate
		if _, seen := cal[day]; !seen {
			cal[day] = true
		}
		if !tasks[i].Completed {
			cal[day] = false
		}
	}
	return cal
}

// CurrentStreak walks backward from today counting fully completed days.
// An incomplete day stops the walk, and so does a day without tasks, except
// today: today having no tasks yet does not break the chain.
func CurrentStreak(cal Calendar, today models.Date) int {
	streak := 0
	for offset := 0; offset < StreakLookbackDays; offset++ {
		done, ok := cal[today.AddDays(-offset)]
		switch {
		case ok && done:
			streak++
		case ok && !done:
			return streak
		case offset > 0:
			return streak
		}
	}
	return streak
}

// CompletionRate is completed/total as a rounded percentage, 0 when there
// are no tasks.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// LongestStreak is the highest longest-streak across skill records. It is
// read from the maintained aggregates, not derived from the task history.
func LongestStreak(skills []models.SkillProgress) int {
	longest := 0
	for i := range skills {
		longest = max(longest, skills[i].LongestStreak)
	}
	return longest
}

// Calculate derives the progress snapshot. It performs no I/O; today is the
// caller's current calendar date.
func Calculate(tasks []models.Task, skills []models.SkillProgress, today models.Date) models.ProgressSnapshot {
	completed := models.CountCompleted(tasks)
	cal := BuildCalendar(tasks)

	return models.ProgressSnapshot{
		TotalTasks:     len(tasks),
		CompletedTasks: completed,
		CompletionRate: CompletionRate(completed, len(tasks)),
		CurrentStreak:  CurrentStreak(cal, today),
		LongestStreak:  LongestStreak(skills),
		Days:           days(tasks),
		Skills:         sortedSkills(skills),
	}
}

// days returns per-date totals ordered oldest first.
func days(tasks []models.Task) []models.DayStatus {
	index := make(map[models.Date]int)
	out := make([]models.DayStatus, 0)
	for i := range tasks {
		day := tasks[i].TaskDate
		pos, ok := index[day]
		if !ok {
			pos = len(out)
			index[day] = pos
			out = append(out, models.DayStatus{Date: day})
		}
		out[pos].TotalTasks++
		if tasks[i].Completed {
			out[pos].CompletedTasks++
		}
	}
	for i := range out {
		out[i].FullyCompleted = out[i].CompletedTasks == out[i].TotalTasks
	}
	slices.SortFunc(out, func(a, b models.DayStatus) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

func sortedSkills(skills []models.SkillProgress) []models.SkillProgress {
	out := slices.Clone(skills)
	if out == nil {
		out = []models.SkillProgress{}
	}
	slices.SortFunc(out, func(a, b models.SkillProgress) int {
		return cmp.Compare(a.SkillName, b.SkillName)
	})
	return out
}
