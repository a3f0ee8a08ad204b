package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/models"
	"github.com/openai/openai-go/v3/shared"
)

const generateTasksTool = "generate_daily_tasks"

var taskToolParameters = shared.FunctionParameters{
	"type": "object",
	"properties": map[string]any{
		"tasks": map[string]any{
			"type":     "array",
			"minItems": models.MinTasksPerDay,
			"maxItems": models.MaxTasksPerDay,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":            map[string]any{"type": "string"},
					"description":      map[string]any{"type": "string"},
					"task_type":        map[string]any{"type": "string", "enum": []string{"learn", "practice", "revise"}},
					"duration_minutes": map[string]any{"type": "number"},
					"platform_name":    map[string]any{"type": "string"},
					"platform_url":     map[string]any{"type": "string"},
					"skill_name":       map[string]any{"type": "string"},
				},
				"required":             []string{"title", "description", "task_type", "duration_minutes", "platform_name", "platform_url", "skill_name"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"tasks"},
	"additionalProperties": false,
}

// BuildTaskPrompts returns the system and user prompts for daily planning.
func BuildTaskPrompts(req TaskRequest) (system, user string) {
	minutes := req.DailyMinutes
	if minutes <= 0 {
		minutes = models.DefaultDailyMinutes
	}
	summary := req.ProgressSummary
	if summary == "" {
		summary = NewLearnerSummary
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are J-AI, a career learning assistant. Generate daily learning tasks for a %q in the %q category.\n\n", req.Role, req.Category)
	fmt.Fprintf(&b, "The user has %d minutes per day. Split into:\n", minutes)
	b.WriteString("- Learn (40% of time): theory, concepts, tutorials\n")
	b.WriteString("- Practice (40% of time): hands-on coding or exercises\n")
	b.WriteString("- Revise (20% of time): review and reinforce\n\n")
	fmt.Fprintf(&b, "User's current progress: %s\n\n", summary)
	b.WriteString("Rules:\n")
	b.WriteString("- Only recommend FREE platforms (YouTube, freeCodeCamp, Coursera audit, LeetCode, HackerRank, Kaggle, GeeksforGeeks, W3Schools, MDN, etc.)\n")
	b.WriteString("- Tasks are progressive: start from fundamentals for new learners, advance for experienced ones\n")
	b.WriteString("- Be specific about what to learn or practice\n")
	b.WriteString("- Include platform name and URL for each task\n")
	b.WriteString("- Name the single skill each task trains in skill_name, reusing names from the progress list when they fit")

	user = fmt.Sprintf("Generate exactly %d-%d tasks for today by calling %s. "+
		`If you cannot call tools, respond with JSON only: {"tasks": [{"title": "...", "description": "...", "task_type": "learn|practice|revise", "duration_minutes": N, "platform_name": "...", "platform_url": "https://...", "skill_name": "..."}]}`,
		models.MinTasksPerDay, models.MaxTasksPerDay, generateTasksTool)

	return b.String(), user
}

// PlanTasks asks the model for today's task drafts.
func (p *OpenAIProvider) PlanTasks(ctx context.Context, req TaskRequest) ([]models.TaskDraft, error) {
	system, user := BuildTaskPrompts(req)
	raw, err := p.callTool(ctx, "plan_tasks", system, user, toolSpec{
		name:        generateTasksTool,
		description: "Generate daily learning tasks",
		parameters:  taskToolParameters,
	})
	if err != nil {
		return nil, err
	}
	return ParseTaskDrafts(raw)
}

// ParseTaskDrafts decodes and validates a {"tasks": [...]} payload. Any
// invalid task rejects the whole payload so no partial batch is stored.
func ParseTaskDrafts(raw []byte) ([]models.TaskDraft, error) {
	var payload struct {
		Tasks []struct {
			Title           string  `json:"title"`
			Description     string  `json:"description"`
			TaskType        string  `json:"task_type"`
			DurationMinutes float64 `json:"duration_minutes"`
			PlatformName    string  `json:"platform_name"`
			PlatformURL     string  `json:"platform_url"`
			SkillName       string  `json:"skill_name"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v: %w", err, ErrMalformedResponse)
	}

	n := len(payload.Tasks)
	if n < models.MinTasksPerDay || n > models.MaxTasksPerDay {
		return nil, fmt.Errorf("expected %d-%d tasks, got %d: %w", models.MinTasksPerDay, models.MaxTasksPerDay, n, ErrMalformedResponse)
	}

	drafts := make([]models.TaskDraft, 0, n)
	for i, t := range payload.Tasks {
		d := models.TaskDraft{
			Title:           cleanText(t.Title),
			Description:     cleanText(t.Description),
			TaskType:        models.TaskType(strings.ToLower(strings.TrimSpace(t.TaskType))),
			DurationMinutes: int(t.DurationMinutes + 0.5),
			PlatformName:    cleanText(t.PlatformName),
			PlatformURL:     cleanURL(t.PlatformURL),
			SkillName:       cleanText(t.SkillName),
		}
		switch {
		case d.Title == "":
			return nil, fmt.Errorf("task %d has no title: %w", i, ErrMalformedResponse)
		case !d.TaskType.Valid():
			return nil, fmt.Errorf("task %d has unknown type %q: %w", i, t.TaskType, ErrMalformedResponse)
		case d.DurationMinutes <= 0:
			return nil, fmt.Errorf("task %d has no duration: %w", i, ErrMalformedResponse)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
