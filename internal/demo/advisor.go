package demo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/ai"
)

// Advisor answers every model-backed feature with fixed content.
type Advisor struct{}

var _ ai.AIProvider = Advisor{}

// NewAdvisor returns the fixture advisor.
func NewAdvisor() Advisor {
	return Advisor{}
}

// PlanTasks returns the fixture tasks as fresh, incomplete drafts.
func (Advisor) PlanTasks(_ context.Context, _ ai.TaskRequest) ([]models.TaskDraft, error) {
	drafts := make([]models.TaskDraft, 0, len(taskFixtures))
	for _, f := range taskFixtures {
		drafts = append(drafts, models.TaskDraft{
			Title:           f.title,
			Description:     f.description,
			TaskType:        f.taskType,
			DurationMinutes: f.minutes,
			PlatformName:    f.platform,
			PlatformURL:     f.url,
			SkillName:       f.skill,
		})
	}
	return drafts, nil
}

// StreamMentor streams a canned answer word by word.
func (Advisor) StreamMentor(ctx context.Context, mc ai.MentorContext, messages []models.ChatMessage, onChunk func(string) error) error {
	question := "your question"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.ChatRoleUser {
			question = fmt.Sprintf("%q", messages[i].Content)
			break
		}
	}

	name := mc.Name
	if name == "" {
		name = "there"
	}
	answer := fmt.Sprintf("Hi %s! This is demo mode, so I can't think about %s for real. "+
		"Keep up the daily tasks: consistency beats intensity, and every completed day extends your streak.", name, question)

	words := strings.SplitAfter(answer, " ")
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onChunk(w); err != nil {
			return fmt.Errorf("mentor stream aborted: %w", err)
		}
	}
	return nil
}

// WriteResume returns the fixture resume.
func (Advisor) WriteResume(context.Context, models.ResumeRequest) (*models.Resume, error) {
	r := Resume
	r.ExperienceBullets = slices.Clone(Resume.ExperienceBullets)
	r.SkillCategories = slices.Clone(Resume.SkillCategories)
	r.Keywords = slices.Clone(Resume.Keywords)
	r.Tips = slices.Clone(Resume.Tips)
	return &r, nil
}

// SearchJobs returns the fixture listings.
func (Advisor) SearchJobs(context.Context, ai.JobSearchRequest) ([]models.JobListing, error) {
	return slices.Clone(Jobs), nil
}
