package ai

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskDrafts_Validation(t *testing.T) {
	t.Parallel()

	valid := `{"title":"T","description":"D","task_type":"learn","duration_minutes":20}`
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "three valid", raw: `{"tasks":[` + valid + `,` + valid + `,` + valid + `]}`},
		{name: "uppercase type accepted", raw: `{"tasks":[` + valid + `,` + valid + `,{"title":"T","task_type":" Practice ","duration_minutes":10}]}`},
		{name: "unknown type", raw: `{"tasks":[` + valid + `,` + valid + `,{"title":"T","task_type":"watch","duration_minutes":10}]}`, wantErr: true},
		{name: "zero duration", raw: `{"tasks":[` + valid + `,` + valid + `,{"title":"T","task_type":"learn","duration_minutes":0}]}`, wantErr: true},
		{name: "markup-only title", raw: `{"tasks":[` + valid + `,` + valid + `,{"title":"<b></b>","task_type":"learn","duration_minutes":5}]}`, wantErr: true},
		{name: "not json", raw: `tasks`, wantErr: true},
		{name: "empty", raw: `{"tasks":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			drafts, err := ParseTaskDrafts([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				assert.Nil(t, drafts)
				return
			}
			require.NoError(t, err)
			for _, d := range drafts {
				assert.True(t, d.TaskType.Valid())
			}
		})
	}
}

func TestParseTaskDrafts_CleansFields(t *testing.T) {
	t.Parallel()

	raw := `{"tasks":[
		{"title":"<script>x</script>Hooks &amp; state","description":"Read","task_type":"learn","duration_minutes":19.6,"platform_url":"javascript:alert(1)"},
		{"title":"B","task_type":"practice","duration_minutes":30,"platform_url":" https://frontendmentor.io "},
		{"title":"C","task_type":"revise","duration_minutes":10}
	]}`

	drafts, err := ParseTaskDrafts([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Hooks & state", drafts[0].Title)
	assert.Equal(t, 20, drafts[0].DurationMinutes)
	assert.Empty(t, drafts[0].PlatformURL)
	assert.Equal(t, "https://frontendmentor.io", drafts[1].PlatformURL)
}

func TestParseJobListings(t *testing.T) {
	t.Parallel()

	job := `{"title":"Dev","company":"Acme","type":"Remote","url":"https://x.io"}`
	nameless := `{"title":"","company":"Acme"}`

	_, err := ParseJobListings([]byte(`{"jobs":[` + strings.Repeat(job+",", 4) + nameless + `,` + job + `]}`))
	assert.ErrorIs(t, err, ErrMalformedResponse, "five usable listings is too few")

	got, err := ParseJobListings([]byte(`{"jobs":[` + strings.Repeat(job+",", 5) + job + `]}`))
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.Equal(t, models.JobTypeRemote, got[0].Type)
}

func TestNormalizeJobType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.JobTypePartTime, normalizeJobType("part-time"))
	assert.Equal(t, models.JobTypeFullTime, normalizeJobType("permanent"))
}

func TestParseResume_RequiresSummary(t *testing.T) {
	t.Parallel()

	_, err := ParseResume([]byte(`{"summary":"  ","keywords":["Go"]}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)

	r, err := ParseResume([]byte(`{"summary":"Engineer"}`))
	require.NoError(t, err)
	assert.NotNil(t, r.ExperienceBullets)
	assert.NotNil(t, r.SkillCategories)
}

func TestProgressSummaries(t *testing.T) {
	t.Parallel()

	skills := []models.SkillProgress{
		{SkillName: "React", CompletionPercentage: 78, DaysPracticed: 18, CurrentStreak: 6},
		{SkillName: "TypeScript", CompletionPercentage: 65, DaysPracticed: 14, CurrentStreak: 4},
	}

	assert.Equal(t, "React: 78%, TypeScript: 65%", ProgressSummary(skills))
	assert.Equal(t, NewLearnerSummary, ProgressSummary(nil))
	assert.Equal(t, "React: 78% (18 days, streak: 6)\nTypeScript: 65% (14 days, streak: 4)", MentorProgress(skills))
	assert.Equal(t, NoMentorProgress, MentorProgress(nil))
	assert.Equal(t, NoSkillSummary, SkillSummary(nil))
}

func TestBuildTaskPrompts(t *testing.T) {
	t.Parallel()

	system, user := BuildTaskPrompts(TaskRequest{Role: "Frontend Developer", Category: "Software & Development"})
	assert.Contains(t, system, `"Frontend Developer"`)
	assert.Contains(t, system, "60 minutes per day")
	assert.Contains(t, system, NewLearnerSummary)
	assert.Contains(t, user, "3-5 tasks")
}

func TestBuildJobPrompts_DefaultQuery(t *testing.T) {
	t.Parallel()

	_, user := BuildJobPrompts(JobSearchRequest{Role: "Data Analyst"})
	assert.Equal(t, "Search for: Data Analyst jobs and internships. Return exactly 6-8 job opportunities.", user)
	assert.Equal(t, "software jobs and internships", DefaultJobQuery(""))
}

func TestAPIError_Unwrap(t *testing.T) {
	t.Parallel()

	rate := &APIError{StatusCode: http.StatusTooManyRequests}
	quota := &APIError{StatusCode: http.StatusTooManyRequests, IsPermanent: true}
	other := &APIError{StatusCode: http.StatusBadGateway}

	assert.True(t, errors.Is(rate, ErrRateLimited))
	assert.False(t, errors.Is(rate, ErrQuotaExceeded))
	assert.True(t, errors.Is(quota, ErrQuotaExceeded))
	assert.False(t, errors.Is(other, ErrRateLimited))
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	retryAfter := 20 * time.Minute
	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{name: "quota", err: &APIError{IsPermanent: true}, attempt: 0, want: time.Hour},
		{name: "rate limit first attempt", err: &APIError{StatusCode: 429}, attempt: 0, want: 60 * time.Second},
		{name: "rate limit backs off", err: &APIError{StatusCode: 429}, attempt: 2, want: 240 * time.Second},
		{name: "rate limit capped", err: &APIError{StatusCode: 429}, attempt: 8, want: 15 * time.Minute},
		{name: "retry-after wins", err: &APIError{StatusCode: 429, RetryAfter: &retryAfter}, attempt: 0, want: retryAfter},
		{name: "generic", err: errors.New("boom"), attempt: 1, want: 10 * time.Second},
		{name: "generic capped", err: errors.New("boom"), attempt: 9, want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetRetryDelay(tt.err, tt.attempt))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	d, ok := parseRetryAfter("7")
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = parseRetryAfter("")
	assert.False(t, ok)
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", SanitizeAPIKey(""))
	assert.Equal(t, RedactedValue, SanitizeAPIKey("short"))
	assert.Equal(t, "sk-a"+RedactedValue+"wxyz", SanitizeAPIKey("sk-abcdefghwxyz"))
}

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	reg := NewProviderRegistry()
	p, err := reg.GetProvider("openai", ProviderConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = reg.GetProvider("nope", ProviderConfig{})
	var notFound *ErrProviderNotFound
	assert.ErrorAs(t, err, &notFound)
}
