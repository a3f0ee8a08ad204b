package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/benvon/career-coach/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskService generates and lists daily task batches.
type TaskService interface {
	Generate(ctx context.Context, userID uuid.UUID) (tasks.Result, error)
	TodayTasks(ctx context.Context, userID uuid.UUID) (models.Date, []models.Task, error)
	History(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.Task, error)
}

// TaskCompleter flips a task's completed flag.
type TaskCompleter interface {
	SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*models.Task, error)
}

var (
	_ TaskService   = (*tasks.Generator)(nil)
	_ TaskCompleter = (*tasks.Completer)(nil)
)

// TaskHandler handles daily task requests
type TaskHandler struct {
	service   TaskService
	completer TaskCompleter
	logger    *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service TaskService, completer TaskCompleter, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{service: service, completer: completer, logger: logger}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListHistory).Methods("GET")
	r.HandleFunc("/today", h.GetToday).Methods("GET")
	r.HandleFunc("/generate", h.Generate).Methods("POST")
	r.HandleFunc("/{id}", h.SetCompleted).Methods("PATCH")
}

// DailyTasksResponse is today's batch with its counters
type DailyTasksResponse struct {
	Date           models.Date   `json:"date"`
	Tasks          []models.Task `json:"tasks"`
	CompletedCount int           `json:"completed_count"`
	TotalCount     int           `json:"total_count"`
}

func newDailyTasksResponse(date models.Date, list []models.Task) DailyTasksResponse {
	if list == nil {
		list = []models.Task{}
	}
	return DailyTasksResponse{
		Date:           date,
		Tasks:          list,
		CompletedCount: models.CountCompleted(list),
		TotalCount:     len(list),
	}
}

// Generate returns today's batch, creating it on the first call of the day.
// A repeated call answers 200 with the existing batch and a message.
func (h *TaskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Generate(r.Context(), request.UserID(r))
	if err != nil {
		respondServiceError(w, h.logger, "generate_tasks", err)
		return
	}

	body := newDailyTasksResponse(result.Date, result.Tasks)
	if !result.Created {
		respondJSONMessage(w, http.StatusOK, body, tasks.MessageAlreadyGenerated)
		return
	}
	respondJSON(w, http.StatusCreated, body)
}

// GetToday returns today's batch, empty before generation.
func (h *TaskHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	date, list, err := h.service.TodayTasks(r.Context(), request.UserID(r))
	if err != nil {
		respondServiceError(w, h.logger, "get_today_tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, newDailyTasksResponse(date, list))
}

// ListHistory returns tasks between the optional from and to dates.
func (h *TaskHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	var from, to models.Date
	for name, dst := range map[string]*models.Date{"from": &from, "to": &to} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid "+name+" date, expected YYYY-MM-DD")
			return
		}
		*dst = d
	}

	list, err := h.service.History(r.Context(), request.UserID(r), from, to)
	if err != nil {
		respondServiceError(w, h.logger, "list_task_history", err)
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	respondJSON(w, http.StatusOK, list)
}

// SetCompletedRequest toggles a task
type SetCompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// SetCompleted sets the completed flag of one of the caller's tasks.
func (h *TaskHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	var req SetCompletedRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	task, err := h.completer.SetCompleted(r.Context(), request.UserID(r), taskID, *req.Completed)
	if err != nil {
		respondServiceError(w, h.logger, "set_task_completed", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}
