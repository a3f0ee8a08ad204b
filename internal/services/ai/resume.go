package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benvon/career-coach/internal/models"
	"github.com/openai/openai-go/v3/shared"
)

const (
	generateResumeTool = "generate_resume"
	resumeSystemPrompt = "You are an expert resume writer specializing in ATS optimization. Always respond with valid JSON only, no markdown."
)

var stringArray = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

var resumeToolParameters = shared.FunctionParameters{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
		"experienceBullets": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"company":  map[string]any{"type": "string"},
					"role":     map[string]any{"type": "string"},
					"duration": map[string]any{"type": "string"},
					"bullets":  stringArray,
				},
				"required": []string{"company", "role", "duration", "bullets"},
			},
		},
		"skillCategories": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{"type": "string"},
					"skills":   stringArray,
				},
				"required": []string{"category", "skills"},
			},
		},
		"keywords": stringArray,
		"tips":     stringArray,
	},
	"required": []string{"summary", "experienceBullets", "skillCategories", "keywords", "tips"},
}

// WriteResume generates an ATS-oriented resume.
func (p *OpenAIProvider) WriteResume(ctx context.Context, req models.ResumeRequest) (*models.Resume, error) {
	raw, err := p.callTool(ctx, "write_resume", resumeSystemPrompt, BuildResumePrompt(req), toolSpec{
		name:        generateResumeTool,
		description: "Generate an ATS-optimized resume",
		parameters:  resumeToolParameters,
	})
	if err != nil {
		return nil, err
	}
	return ParseResume(raw)
}

// ParseResume decodes and cleans a resume payload. A resume without a
// summary is rejected.
func ParseResume(raw []byte) (*models.Resume, error) {
	var r models.Resume
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to decode resume: %v: %w", err, ErrMalformedResponse)
	}

	r.Summary = cleanText(r.Summary)
	if r.Summary == "" {
		return nil, fmt.Errorf("resume has no summary: %w", ErrMalformedResponse)
	}

	for i := range r.ExperienceBullets {
		e := &r.ExperienceBullets[i]
		e.Company = cleanText(e.Company)
		e.Role = cleanText(e.Role)
		e.Duration = cleanText(e.Duration)
		e.Bullets = cleanAll(e.Bullets)
	}
	for i := range r.SkillCategories {
		r.SkillCategories[i].Category = cleanText(r.SkillCategories[i].Category)
		r.SkillCategories[i].Skills = cleanAll(r.SkillCategories[i].Skills)
	}
	r.Keywords = cleanAll(r.Keywords)
	r.Tips = cleanAll(r.Tips)

	if r.ExperienceBullets == nil {
		r.ExperienceBullets = []models.ExperienceBullets{}
	}
	if r.SkillCategories == nil {
		r.SkillCategories = []models.SkillCategory{}
	}
	return &r, nil
}
