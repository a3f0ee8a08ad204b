package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/services/progress"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProgressService derives a user's progress snapshot.
type ProgressService interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (models.ProgressSnapshot, error)
}

var _ ProgressService = (*progress.Service)(nil)

// ProgressHandler serves streaks and completion rates
type ProgressHandler struct {
	service ProgressService
	logger  *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service ProgressService, logger *zap.Logger) *ProgressHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressHandler{service: service, logger: logger}
}

// RegisterRoutes registers progress routes on the /api/v1 router
func (h *ProgressHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/progress", h.GetProgress).Methods("GET")
}

// GetProgress computes the snapshot on every call.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	snap, err := h.service.Snapshot(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, "get_progress", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
