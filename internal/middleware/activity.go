package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/career-coach/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder stores the last time a user talked to the API.
type ActivityRecorder interface {
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
}

// DefaultActivityInterval is the minimum gap between two recorded
// interactions of one user.
const DefaultActivityInterval = 5 * time.Minute

// ActivityTracker records authenticated API activity so the worker can limit
// daily pre-generation to recently active users.
type ActivityTracker struct {
	repo     ActivityRecorder
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	seen map[uuid.UUID]time.Time
}

// NewActivityTracker creates a tracker writing at most once per interval per user.
func NewActivityTracker(repo ActivityRecorder, interval time.Duration, logger *zap.Logger) *ActivityTracker {
	if interval <= 0 {
		interval = DefaultActivityInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityTracker{
		repo:     repo,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		seen:     make(map[uuid.UUID]time.Time),
	}
}

// due reports whether userID's activity should be written now and marks it.
func (at *ActivityTracker) due(userID uuid.UUID) bool {
	at.mu.Lock()
	defer at.mu.Unlock()
	now := at.now()
	if last, ok := at.seen[userID]; ok && now.Sub(last) < at.interval {
		return false
	}
	at.seen[userID] = now
	return true
}

// Middleware records activity for requests that carry a user. Failures are
// logged and never fail the request.
func (at *ActivityTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := request.UserFromContext(r); user != nil && at.due(user.ID) {
			if err := at.repo.UpdateLastInteraction(r.Context(), user.ID); err != nil {
				at.logger.Warn("activity_update_failed",
					zap.String("user_id", user.ID.String()),
					zap.Error(err),
				)
				at.mu.Lock()
				delete(at.seen, user.ID)
				at.mu.Unlock()
			}
		}
		next.ServeHTTP(w, r)
	})
}
