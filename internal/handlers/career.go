package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/services/career"
	"github.com/benvon/career-coach/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CareerService is the mentor, resume writer and job search.
type CareerService interface {
	Mentor(ctx context.Context, userID uuid.UUID, messages []models.ChatMessage, onChunk func(string) error) error
	Resume(ctx context.Context, userID uuid.UUID, req models.ResumeRequest) (*models.Resume, error)
	Jobs(ctx context.Context, userID uuid.UUID, query string) (*career.JobResult, error)
}

var _ CareerService = (*career.Service)(nil)

// CareerHandler handles mentor chat, resume and job search requests
type CareerHandler struct {
	service CareerService
	logger  *zap.Logger
}

// NewCareerHandler creates a new career handler
func NewCareerHandler(service CareerService, logger *zap.Logger) *CareerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerHandler{service: service, logger: logger}
}

// RegisterRoutes registers resume and job routes. The streaming mentor route
// is registered separately with RegisterStreamRoutes so it can bypass the
// request timeout.
func (h *CareerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/resume", h.GenerateResume).Methods("POST")
	r.HandleFunc("/jobs/search", h.SearchJobs).Methods("POST")
}

// RegisterStreamRoutes registers the SSE mentor chat route
func (h *CareerHandler) RegisterStreamRoutes(r *mux.Router) {
	r.HandleFunc("/mentor/chat", h.MentorChat).Methods("POST")
}

// MaxChatMessages bounds the conversation a client may resend.
const MaxChatMessages = 50

// MentorChatRequest is the full conversation so far
type MentorChatRequest struct {
	Messages []models.ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

// sseStream writes server-sent events. Headers are sent with the first event
// so errors raised before any output can still use a normal status code.
type sseStream struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func (s *sseStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

func (s *sseStream) send(event, data string) error {
	s.start()
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (s *sseStream) sendJSON(event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(event, string(b))
}

// MentorChat streams the mentor's answer as server-sent events:
// data: {"content":"..."} per chunk, then data: [DONE].
func (h *CareerHandler) MentorChat(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req MentorChatRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	stream := &sseStream{w: w, rc: http.NewResponseController(w)}
	err := h.service.Mentor(r.Context(), userID, req.Messages, func(chunk string) error {
		return stream.sendJSON("", map[string]string{"content": chunk})
	})
	if err != nil {
		if !stream.started {
			respondServiceError(w, h.logger, "mentor_chat", err)
			return
		}
		status, message := errorStatus(err)
		h.logger.Warn("mentor_stream_failed",
			zap.String("user_id", userID.String()),
			zap.Int("status_code", status),
			zap.Error(err),
		)
		_ = stream.sendJSON("error", map[string]any{"status": status, "message": message})
		return
	}

	if err := stream.send("", "[DONE]"); err != nil {
		h.logger.Debug("mentor_stream_closed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// GenerateResume writes an ATS-oriented resume from the submitted details.
func (h *CareerHandler) GenerateResume(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req models.ResumeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	resume, err := h.service.Resume(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, "generate_resume", err)
		return
	}
	respondJSON(w, http.StatusOK, resume)
}

// JobSearchRequest is an optional free-text query
type JobSearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// SearchJobs suggests job listings for the caller's target role.
func (h *CareerHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req JobSearchRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result, err := h.service.Jobs(r.Context(), userID, validation.SanitizeText(req.Query))
	if err != nil {
		respondServiceError(w, h.logger, "search_jobs", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
