package ai

import (
	"context"

	"github.com/benvon/career-coach/internal/models"
	"go.uber.org/zap"
)

// TaskRequest parameterizes the planning of one day's tasks.
type TaskRequest struct {
	Role            string
	Category        string
	DailyMinutes    int
	ProgressSummary string
}

// TaskPlanner proposes a day's task drafts. Implementations return
// ErrRateLimited / ErrQuotaExceeded (possibly wrapped in *APIError) for the
// matching upstream conditions and ErrMalformedResponse when the answer
// cannot be turned into 3 to 5 valid drafts.
type TaskPlanner interface {
	PlanTasks(ctx context.Context, req TaskRequest) ([]models.TaskDraft, error)
}

// MentorContext is what the mentor knows about the learner.
type MentorContext struct {
	Name         string
	Role         string
	Category     string
	DailyMinutes int
	Progress     string
}

// Mentor streams a chat answer chunk by chunk. onChunk is called for every
// non-empty delta; returning an error from it aborts the stream.
type Mentor interface {
	StreamMentor(ctx context.Context, mc MentorContext, messages []models.ChatMessage, onChunk func(string) error) error
}

// ResumeWriter turns raw resume input into an ATS-oriented resume.
type ResumeWriter interface {
	WriteResume(ctx context.Context, req models.ResumeRequest) (*models.Resume, error)
}

// JobSearchRequest describes a job search.
type JobSearchRequest struct {
	Query        string
	Role         string
	Category     string
	SkillSummary string
}

// JobSearcher suggests job listings.
type JobSearcher interface {
	SearchJobs(ctx context.Context, req JobSearchRequest) ([]models.JobListing, error)
}

// CareerAdvisor bundles the conversational features around the task core.
type CareerAdvisor interface {
	Mentor
	ResumeWriter
	JobSearcher
}

// AIProvider is everything the application needs from a model backend.
type AIProvider interface {
	TaskPlanner
	CareerAdvisor
}

// ProviderConfig configures a provider instance.
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Logger    *zap.Logger
	DebugMode bool
}

// ProviderFactory creates an AI provider from its configuration
type ProviderFactory func(cfg ProviderConfig) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a registry with the built-in providers.
func NewProviderRegistry() *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]ProviderFactory)}
	r.Register("openai", func(cfg ProviderConfig) (AIProvider, error) {
		return NewOpenAIProvider(cfg), nil
	})
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider
func (r *ProviderRegistry) GetProvider(name string, cfg ProviderConfig) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(cfg)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
