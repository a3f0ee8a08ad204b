package career

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/career-coach/internal/cache"
	"github.com/benvon/career-coach/internal/demo"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAdvisor records the requests it receives.
type mockAdvisor struct {
	demo.Advisor
	mentorCtx   ai.MentorContext
	resumeReq   models.ResumeRequest
	jobReqs     []ai.JobSearchRequest
	searchError error
}

func (m *mockAdvisor) StreamMentor(ctx context.Context, mc ai.MentorContext, msgs []models.ChatMessage, onChunk func(string) error) error {
	m.mentorCtx = mc
	return m.Advisor.StreamMentor(ctx, mc, msgs, onChunk)
}

func (m *mockAdvisor) WriteResume(ctx context.Context, req models.ResumeRequest) (*models.Resume, error) {
	m.resumeReq = req
	return m.Advisor.WriteResume(ctx, req)
}

func (m *mockAdvisor) SearchJobs(ctx context.Context, req ai.JobSearchRequest) ([]models.JobListing, error) {
	m.jobReqs = append(m.jobReqs, req)
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.Advisor.SearchJobs(ctx, req)
}

func newTestService(jobCache cache.Store) (*Service, *mockAdvisor) {
	store := demo.NewSeededStore("2024-05-10")
	advisor := &mockAdvisor{}
	return NewService(advisor, store, store, jobCache, time.Minute, nil), advisor
}

func TestMentor_UsesLearnerContext(t *testing.T) {
	t.Parallel()

	svc, advisor := newTestService(nil)
	var chunks int
	err := svc.Mentor(context.Background(), demo.UserID,
		[]models.ChatMessage{{Role: models.ChatRoleUser, Content: "Hi"}},
		func(string) error { chunks++; return nil })
	require.NoError(t, err)

	assert.Positive(t, chunks)
	assert.Equal(t, demo.FullName, advisor.mentorCtx.Name)
	assert.Equal(t, demo.SelectedRole, advisor.mentorCtx.Role)
	assert.Equal(t, demo.DailyMinutes, advisor.mentorCtx.DailyMinutes)
	assert.Contains(t, advisor.mentorCtx.Progress, "React Fundamentals: 78% (18 days, streak: 6)")
}

func TestMentor_UnknownUserGetsDefaults(t *testing.T) {
	t.Parallel()

	svc, advisor := newTestService(nil)
	err := svc.Mentor(context.Background(), uuid.New(), nil, func(string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, ai.NoMentorProgress, advisor.mentorCtx.Progress)
	assert.Equal(t, models.DefaultDailyMinutes, advisor.mentorCtx.DailyMinutes)
}

func TestResume_DefaultsTargetRole(t *testing.T) {
	t.Parallel()

	svc, advisor := newTestService(nil)

	_, err := svc.Resume(context.Background(), demo.UserID, models.ResumeRequest{})
	require.NoError(t, err)
	assert.Equal(t, demo.SelectedRole, advisor.resumeReq.TargetRole)

	_, err = svc.Resume(context.Background(), demo.UserID, models.ResumeRequest{TargetRole: "UX Designer"})
	require.NoError(t, err)
	assert.Equal(t, "UX Designer", advisor.resumeReq.TargetRole)

	_, err = svc.Resume(context.Background(), uuid.Nil, models.ResumeRequest{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestJobs_CachesPerQuery(t *testing.T) {
	t.Parallel()

	svc, advisor := newTestService(cache.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Jobs(ctx, demo.UserID, "")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Frontend Developer jobs and internships", first.Query)

	second, err := svc.Jobs(ctx, demo.UserID, "  frontend developer   JOBS and internships ")
	require.NoError(t, err)
	assert.True(t, second.Cached, "normalized query hits the cache")
	assert.Equal(t, first.Jobs, second.Jobs)

	_, err = svc.Jobs(ctx, demo.UserID, "react internships")
	require.NoError(t, err)
	assert.Len(t, advisor.jobReqs, 2)
	assert.Equal(t, "React Fundamentals: 78%, System Design Basics: 42%, TypeScript: 65%", advisor.jobReqs[0].SkillSummary)
}

func TestJobs_UpstreamErrorIsNotCached(t *testing.T) {
	t.Parallel()

	svc, advisor := newTestService(cache.NewMemoryStore())
	advisor.searchError = &ai.APIError{StatusCode: 429}

	_, err := svc.Jobs(context.Background(), demo.UserID, "go")
	assert.True(t, errors.Is(err, ai.ErrRateLimited))

	advisor.searchError = nil
	res, err := svc.Jobs(context.Background(), demo.UserID, "go")
	require.NoError(t, err)
	assert.False(t, res.Cached)
}
