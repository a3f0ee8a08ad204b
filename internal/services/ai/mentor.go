package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// MaxMentorMessages bounds how much client-held history is forwarded.
const MaxMentorMessages = 40

// StreamMentor streams the mentor's answer to the conversation.
func (p *OpenAIProvider) StreamMentor(ctx context.Context, mc MentorContext, messages []models.ChatMessage, onChunk func(string) error) error {
	ctx, span := startSpan(ctx, "ai.mentor_chat")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", p.model), attribute.Int("ai.messages", len(messages)))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: mentorMessages(mc, messages),
	}

	system := BuildMentorSystemPrompt(mc)
	p.logRequest(ctx, "mentor_chat", system, len(params.Messages))

	start := time.Now()
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() {
		if err := stream.Close(); err != nil {
			p.logger.Debug("failed to close mentor stream", zap.Error(err))
		}
	}()

	total := 0
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		total += len(delta)
		if err := onChunk(delta); err != nil {
			span.SetStatus(codes.Error, "consumer aborted")
			return fmt.Errorf("mentor stream aborted: %w", err)
		}
	}

	if err := stream.Err(); err != nil {
		err = classifyError(err)
		p.logError(ctx, "mentor_chat", err, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "stream failed")
		return fmt.Errorf("mentor chat failed: %w", err)
	}

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "mentor_chat"),
			zap.String("model", p.model),
			zap.Int("response_length", total),
			zap.String("user_id", ExtractUserID(ctx)),
			zap.String("request_id", ExtractRequestID(ctx)),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
	return nil
}

// mentorMessages prepends the persona and keeps the most recent turns.
func mentorMessages(mc MentorContext, messages []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	if len(messages) > MaxMentorMessages {
		messages = messages[len(messages)-MaxMentorMessages:]
	}
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	out = append(out, openai.SystemMessage(BuildMentorSystemPrompt(mc)))
	for _, m := range messages {
		switch m.Role {
		case models.ChatRoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
