package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/models"
	"github.com/openai/openai-go/v3/shared"
)

const returnJobsTool = "return_jobs"

func jobToolParameters() shared.FunctionParameters {
	types := make([]string, 0, len(models.JobTypes))
	for _, t := range models.JobTypes {
		types = append(types, string(t))
	}
	return shared.FunctionParameters{
		"type": "object",
		"properties": map[string]any{
			"jobs": map[string]any{
				"type":     "array",
				"minItems": models.MinJobListings,
				"maxItems": models.MaxJobListings,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"company":     map[string]any{"type": "string"},
						"location":    map[string]any{"type": "string"},
						"type":        map[string]any{"type": "string", "enum": types},
						"experience":  map[string]any{"type": "string"},
						"skills":      stringArray,
						"platform":    map[string]any{"type": "string"},
						"url":         map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
					"required": []string{"title", "company", "location", "type", "experience", "skills", "platform", "url", "description"},
				},
			},
		},
		"required": []string{"jobs"},
	}
}

// SearchJobs asks the model for job opportunities matching the request.
func (p *OpenAIProvider) SearchJobs(ctx context.Context, req JobSearchRequest) ([]models.JobListing, error) {
	system, user := BuildJobPrompts(req)
	raw, err := p.callTool(ctx, "search_jobs", system, user, toolSpec{
		name:        returnJobsTool,
		description: "Return job listings",
		parameters:  jobToolParameters(),
	})
	if err != nil {
		return nil, err
	}
	return ParseJobListings(raw)
}

// ParseJobListings decodes a {"jobs": [...]} payload. Listings without a
// title or company are dropped, unknown job types fall back to Full-time
// and anything past the maximum is cut. Fewer than the minimum usable
// listings is malformed.
func ParseJobListings(raw []byte) ([]models.JobListing, error) {
	var payload struct {
		Jobs []models.JobListing `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %v: %w", err, ErrMalformedResponse)
	}

	jobs := make([]models.JobListing, 0, len(payload.Jobs))
	for _, j := range payload.Jobs {
		j.Title = cleanText(j.Title)
		j.Company = cleanText(j.Company)
		if j.Title == "" || j.Company == "" {
			continue
		}
		j.Location = cleanText(j.Location)
		j.Experience = cleanText(j.Experience)
		j.Platform = cleanText(j.Platform)
		j.Description = cleanText(j.Description)
		j.URL = cleanURL(j.URL)
		j.Skills = cleanAll(j.Skills)
		j.Type = normalizeJobType(string(j.Type))
		jobs = append(jobs, j)
		if len(jobs) == models.MaxJobListings {
			break
		}
	}

	if len(jobs) < models.MinJobListings {
		return nil, fmt.Errorf("expected at least %d job listings, got %d: %w", models.MinJobListings, len(jobs), ErrMalformedResponse)
	}
	return jobs, nil
}

func normalizeJobType(raw string) models.JobType {
	raw = strings.TrimSpace(raw)
	for _, t := range models.JobTypes {
		if strings.EqualFold(raw, string(t)) {
			return t
		}
	}
	return models.JobTypeFullTime
}
