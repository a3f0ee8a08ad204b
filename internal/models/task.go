package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskType classifies a daily task.
type TaskType string

const (
	TaskTypeLearn    TaskType = "learn"
	TaskTypePractice TaskType = "practice"
	TaskTypeRevise   TaskType = "revise"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeLearn, TaskTypePractice, TaskTypeRevise:
		return true
	}
	return false
}

// Task is one suggested unit of daily work for a user on a given date.
type Task struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	TaskDate        Date      `json:"task_date"`
	Position        int       `json:"position"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	TaskType        TaskType  `json:"task_type"`
	DurationMinutes int       `json:"duration_minutes"`
	PlatformName    *string   `json:"platform_name,omitempty"`
	PlatformURL     *string   `json:"platform_url,omitempty"`
	SkillName       *string   `json:"skill_name,omitempty"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// TaskDraft is a task proposed by the planner before it is stored.
type TaskDraft struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	TaskType        TaskType `json:"task_type"`
	DurationMinutes int      `json:"duration_minutes"`
	PlatformName    string   `json:"platform_name,omitempty"`
	PlatformURL     string   `json:"platform_url,omitempty"`
	SkillName       string   `json:"skill_name,omitempty"`
}

// Bounds on the number of tasks in one daily batch.
const (
	MinTasksPerDay = 3
	MaxTasksPerDay = 5
)

// CountCompleted returns how many of tasks are completed.
func CountCompleted(tasks []Task) int {
	n := 0
	for i := range tasks {
		if tasks[i].Completed {
			n++
		}
	}
	return n
}

// SkillProgress is a per-user, per-skill aggregate. LongestStreak is never
// lower than CurrentStreak.
type SkillProgress struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	SkillName            string    `json:"skill_name"`
	CompletionPercentage int       `json:"completion_percentage"`
	DaysPracticed        int       `json:"days_practiced"`
	CurrentStreak        int       `json:"current_streak"`
	LongestStreak        int       `json:"longest_streak"`
	LastActivityDate     *Date     `json:"last_activity_date,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DayStatus is one entry of the completion calendar.
type DayStatus struct {
	Date           Date `json:"date"`
	TotalTasks     int  `json:"total_tasks"`
	CompletedTasks int  `json:"completed_tasks"`
	FullyCompleted bool `json:"fully_completed"`
}

// ProgressSnapshot is derived on every read and never stored.
type ProgressSnapshot struct {
	TotalTasks     int             `json:"total_tasks"`
	CompletedTasks int             `json:"completed_tasks"`
	CompletionRate int             `json:"completion_rate"`
	CurrentStreak  int             `json:"current_streak"`
	LongestStreak  int             `json:"longest_streak"`
	Days           []DayStatus     `json:"days"`
	Skills         []SkillProgress `json:"skills"`
}
