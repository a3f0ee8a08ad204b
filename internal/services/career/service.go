// Package career serves the conversational features around the task core:
// mentor chat, resume writing and job search.
package career

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/career-coach/internal/cache"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned when no user identity is available.
var ErrNotAuthenticated = errors.New("not authenticated")

// DefaultJobCacheTTL is used when the service is built with a zero TTL.
const DefaultJobCacheTTL = 30 * time.Minute

// Service adds the learner's profile and progress to advisor calls.
type Service struct {
	advisor  ai.CareerAdvisor
	profiles database.ProfileStore
	skills   database.SkillProgressStore
	jobCache cache.Store
	jobTTL   time.Duration
	logger   *zap.Logger
}

// NewService creates the career service. jobCache may be nil.
func NewService(advisor ai.CareerAdvisor, profiles database.ProfileStore, skills database.SkillProgressStore, jobCache cache.Store, jobTTL time.Duration, logger *zap.Logger) *Service {
	if jobTTL <= 0 {
		jobTTL = DefaultJobCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		advisor:  advisor,
		profiles: profiles,
		skills:   skills,
		jobCache: jobCache,
		jobTTL:   jobTTL,
		logger:   logger,
	}
}

// learner loads what the advisor should know about the user. A missing
// profile is not an error.
func (s *Service) learner(ctx context.Context, userID uuid.UUID) (*models.Profile, []models.SkillProgress, error) {
	if userID == uuid.Nil {
		return nil, nil, ErrNotAuthenticated
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	skills, err := s.skills.ListSkillProgress(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load skill progress: %w", err)
	}
	return profile, skills, nil
}

// Mentor streams the mentor's answer to the conversation.
func (s *Service) Mentor(ctx context.Context, userID uuid.UUID, messages []models.ChatMessage, onChunk func(string) error) error {
	profile, skills, err := s.learner(ctx, userID)
	if err != nil {
		return err
	}
	mc := ai.MentorContext{
		Name:         profile.DisplayName(""),
		Role:         profile.Role(""),
		Category:     profile.Category(""),
		DailyMinutes: profile.Minutes(),
		Progress:     ai.MentorProgress(skills),
	}
	return s.advisor.StreamMentor(ai.WithUserID(ctx, userID.String()), mc, messages, onChunk)
}

// Resume writes a resume. An empty target role falls back to the user's
// selected role.
func (s *Service) Resume(ctx context.Context, userID uuid.UUID, req models.ResumeRequest) (*models.Resume, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(req.TargetRole) == "" {
		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		req.TargetRole = profile.Role("")
	}
	resume, err := s.advisor.WriteResume(ai.WithUserID(ctx, userID.String()), req)
	if err != nil {
		return nil, fmt.Errorf("failed to write resume: %w", err)
	}
	return resume, nil
}

// JobResult is a job search answer.
type JobResult struct {
	Query  string              `json:"query"`
	Jobs   []models.JobListing `json:"jobs"`
	Cached bool                `json:"cached"`
}

// Jobs searches for job opportunities. Answers are cached per user and
// normalized query; cache failures only cost a fresh search.
func (s *Service) Jobs(ctx context.Context, userID uuid.UUID, query string) (*JobResult, error) {
	profile, skills, err := s.learner(ctx, userID)
	if err != nil {
		return nil, err
	}

	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		query = ai.DefaultJobQuery(profile.Role(""))
	}
	key := jobCacheKey(userID, query)

	if s.jobCache != nil {
		var jobs []models.JobListing
		hit, err := cache.GetJSON(ctx, s.jobCache, key, &jobs)
		if err != nil {
			s.logger.Warn("job_cache_read_failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		if hit {
			return &JobResult{Query: query, Jobs: jobs, Cached: true}, nil
		}
	}

	jobs, err := s.advisor.SearchJobs(ai.WithUserID(ctx, userID.String()), ai.JobSearchRequest{
		Query:        query,
		Role:         profile.Role(""),
		Category:     profile.Category(""),
		SkillSummary: ai.SkillSummary(skills),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	if s.jobCache != nil {
		if err := cache.SetJSON(ctx, s.jobCache, key, jobs, s.jobTTL); err != nil {
			s.logger.Warn("job_cache_write_failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return &JobResult{Query: query, Jobs: jobs}, nil
}

func jobCacheKey(userID uuid.UUID, query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return "jobs:" + userID.String() + ":" + hex.EncodeToString(sum[:8])
}
