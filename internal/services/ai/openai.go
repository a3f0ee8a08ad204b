package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds non-streaming calls
	DefaultTimeout = 60 * time.Second
)

const tracerName = "github.com/benvon/career-coach/internal/services/ai"

// startSpan opens a span on the current global tracer provider.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// OpenAIProvider implements AIProvider against any OpenAI-compatible chat
// completions endpoint.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider. Empty model and base URL fall back to
// the OpenAI defaults.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// No client-wide timeout: mentor answers stream for longer than a
	// single completion takes. Non-streaming calls get a context deadline.
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{}),
		option.WithMaxRetries(0),
	)

	log.Debug("openai_provider_initialized",
		zap.String("model", model),
		zap.String("base_url", baseURL),
		zap.String("api_key", SanitizeAPIKey(cfg.APIKey)),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    log,
		debugMode: cfg.DebugMode,
	}
}

// toolSpec describes the single function the model is required to call.
type toolSpec struct {
	name        string
	description string
	parameters  shared.FunctionParameters
}

// callTool sends a system+user prompt that requires the model to call spec's
// function and returns the function arguments. When the model answers in
// plain content instead, the JSON object embedded in the content is returned.
func (p *OpenAIProvider) callTool(ctx context.Context, operation, system, user string, spec toolSpec) ([]byte, error) {
	ctx, span := startSpan(ctx, "ai."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", p.model), attribute.String("ai.tool", spec.name))

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Tools: []openai.ChatCompletionToolUnionParam{
			openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
				Name:        spec.name,
				Description: openai.String(spec.description),
				Parameters:  spec.parameters,
			}),
		},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("required"),
		},
	}

	p.logRequest(ctx, operation, system+"\n\n"+user, len(params.Messages))

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		err = classifyError(err)
		p.logError(ctx, operation, err, latency)
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, "no choices")
		return nil, fmt.Errorf("%s: no choices in response: %w", operation, ErrMalformedResponse)
	}

	msg := resp.Choices[0].Message
	for _, call := range msg.ToolCalls {
		if call.Function.Name == spec.name && call.Function.Arguments != "" {
			p.logResponse(ctx, operation, call.Function.Arguments, latency)
			return []byte(call.Function.Arguments), nil
		}
	}

	p.logResponse(ctx, operation, msg.Content, latency)
	raw, ok := extractJSONObject(msg.Content)
	if !ok {
		span.SetStatus(codes.Error, "no structured payload")
		return nil, fmt.Errorf("%s: response has neither a tool call nor JSON content: %w", operation, ErrMalformedResponse)
	}
	return raw, nil
}

// extractJSONObject finds the outermost {...} in content, tolerating code
// fences and prose around it.
func extractJSONObject(content string) ([]byte, bool) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	raw := []byte(content[start : end+1])
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}

func (p *OpenAIProvider) logRequest(ctx context.Context, operation, prompt string, messages int) {
	if !p.debugMode {
		return
	}
	p.logger.Debug("llm_api_request",
		zap.String("operation", operation),
		zap.String("model", p.model),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("message_count", messages),
		zap.String("prompt_preview", Preview(prompt, true)),
		zap.String("user_id", ExtractUserID(ctx)),
		zap.String("request_id", ExtractRequestID(ctx)),
	)
}

func (p *OpenAIProvider) logResponse(ctx context.Context, operation, content string, latency time.Duration) {
	if !p.debugMode {
		return
	}
	p.logger.Debug("llm_api_response",
		zap.String("operation", operation),
		zap.String("model", p.model),
		zap.Int("response_length", len(content)),
		zap.String("response_preview", Preview(content, true)),
		zap.String("user_id", ExtractUserID(ctx)),
		zap.String("request_id", ExtractRequestID(ctx)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)
}

// logError always logs: upstream failures are user visible.
func (p *OpenAIProvider) logError(ctx context.Context, operation string, err error, latency time.Duration) {
	p.logger.Warn("llm_api_error",
		zap.String("operation", operation),
		zap.String("model", p.model),
		zap.Error(err),
		zap.Bool("rate_limited", IsRateLimitError(err)),
		zap.Bool("quota_exceeded", IsQuotaError(err)),
		zap.String("user_id", ExtractUserID(ctx)),
		zap.String("request_id", ExtractRequestID(ctx)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)
}
