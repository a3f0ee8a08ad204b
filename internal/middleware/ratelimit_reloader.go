package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// DefaultRatelimitRate is used until a rate is stored ("5-S" is five requests per second).
const DefaultRatelimitRate = "5-S"

// RatelimitConfigStore loads and seeds the stored rate.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

var _ RatelimitConfigStore = (*database.RatelimitConfigRepository)(nil)

// NewLimiterStore returns a Redis-backed limiter store, or an in-process one
// when redisClient is nil.
func NewLimiterStore(redisClient *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: "career_coach_limiter", CleanUpInterval: time.Minute}
	if redisClient == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}
	return redisstore.NewStoreWithOptions(redisClient, opts)
}

// RateLimitReloader wraps ulule/limiter and periodically reloads rate limit config from the database.
type RateLimitReloader struct {
	next        http.Handler
	store       limiter.Store
	repo        RatelimitConfigStore
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     http.Handler
}

// NewRateLimitReloader creates a rate limit middleware over store. The rate
// comes from repo when set; a nil repo keeps defaultRate.
func NewRateLimitReloader(store limiter.Store, repo RatelimitConfigStore, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = DefaultRatelimitRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with rate limiting and hot-reload.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *RateLimitReloader) Start(ctx context.Context) {
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

// rate returns the stored rate, seeding the default when nothing is stored.
func (r *RateLimitReloader) rate(ctx context.Context) string {
	if r.repo == nil {
		return r.defaultRate
	}
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		return r.defaultRate
	}
	if cfg != nil && cfg.Rate != "" {
		return cfg.Rate
	}
	if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
		r.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	}
	return r.defaultRate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}

	rateStr := r.rate(ctx)
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rate, err = limiter.NewRateFromFormatted(r.defaultRate)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
			return
		}
	}

	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded, please try again later.")
		}),
	)
	h := mw.Handler(r.next)

	r.mu.Lock()
	r.current = h
	r.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (r *RateLimitReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
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
