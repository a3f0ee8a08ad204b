package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// CorsConfigSource loads the stored CORS policy.
type CorsConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

var _ CorsConfigSource = (*database.CorsConfigRepository)(nil)

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
type CORSReloader struct {
	next     http.Handler
	repo     CorsConfigSource
	fallback string // e.g. FRONTEND_URL
	log      *zap.Logger
	interval time.Duration
	mu       sync.RWMutex
	current  http.Handler
}

// NewCORSReloader creates a CORS middleware that loads config from repo and
// hot-reloads it. A nil repo always uses the fallback origins.
func NewCORSReloader(repo CorsConfigSource, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with CORS and hot-reload.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 || r.repo == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// options builds the rs/cors options from the stored policy, falling back
// to the frontend URL when none is stored.
func (r *CORSReloader) options(ctx context.Context) cors.Options {
	origins := database.AllowedOriginsSlice(r.fallback)
	allowCreds := true
	maxAge := 86400

	if r.repo != nil {
		cfg, err := r.repo.Get(ctx)
		switch {
		case err != nil:
			r.log.Debug("cors_config_unavailable_using_fallback", zap.Error(err))
		case cfg != nil:
			origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
			allowCreds = cfg.AllowCredentials
			maxAge = cfg.MaxAge
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Retry-After"},
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}
	h := cors.New(r.options(ctx)).Handler(r.next)
	r.mu.Lock()
	r.current = h
	r.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.current
	r.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
