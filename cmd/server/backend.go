package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/career-coach/internal/cache"
	"github.com/benvon/career-coach/internal/config"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/demo"
	"github.com/benvon/career-coach/internal/handlers"
	"github.com/benvon/career-coach/internal/middleware"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/benvon/career-coach/internal/services/progress"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

// backend is the set of data sources and collaborators the HTTP layer runs
// on. Demo mode and the production stack fill it differently; everything
// above it is wired the same way.
type backend struct {
	tasks    database.TaskStore
	skills   database.SkillProgressStore
	profiles database.ProfileStore
	activity middleware.ActivityRecorder
	advisor  ai.AIProvider
	refresh  tasks.SkillRefresher
	jobCache cache.Store

	limiterStore    limiter.Store
	corsSource      middleware.CorsConfigSource
	ratelimitSource middleware.RatelimitConfigStore

	authenticate func(http.Handler) http.Handler
	login        handlers.LoginProvider
	states       handlers.StateIssuer

	jobQueue queue.JobQueue
	health   *handlers.HealthChecker
	closers  []func() error
}

func (b *backend) close(logger *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("failed_to_close_dependency", zap.Error(err))
		}
	}
}

// newDemoBackend serves the fixture data set as a single fixed user. No
// external service is contacted.
func newDemoBackend(cfg *config.Config, logger *zap.Logger) (*backend, error) {
	store := demo.NewSeededStore(models.DateOf(time.Now(), cfg.Location()))
	limiterStore, err := middleware.NewLimiterStore(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter store: %w", err)
	}

	logger.Info("demo_mode_enabled", zap.String("user_id", demo.UserID.String()))

	return &backend{
		tasks:        store,
		skills:       store,
		profiles:     store,
		activity:     store,
		advisor:      demo.NewAdvisor(),
		refresh:      progress.NewSkillUpdater(store, store, logger),
		jobCache:     cache.NewMemoryStore(),
		limiterStore: limiterStore,
		authenticate: middleware.DemoAuth(demo.User()),
		health:       handlers.NewHealthChecker(),
	}, nil
}

// newBackend connects to Postgres, Redis, the model backend and, when
// configured, RabbitMQ.
func newBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger, debugMode bool) (*backend, error) {
	b := &backend{}
	if err := b.connect(ctx, cfg, logger, debugMode); err != nil {
		b.close(logger)
		return nil, err
	}
	return b, nil
}

func (b *backend) connect(ctx context.Context, cfg *config.Config, logger *zap.Logger, debugMode bool) error {
	advisor, err := createAIProvider(cfg, logger, debugMode)
	if err != nil {
		return err
	}
	b.advisor = advisor

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, db.Close)
	logger.Info("connected_to_database")

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, redisClient.Close)
	logger.Info("connected_to_redis")

	b.limiterStore, err = middleware.NewLimiterStore(redisClient)
	if err != nil {
		return fmt.Errorf("failed to create limiter store: %w", err)
	}

	taskRepo := database.NewTaskRepository(db)
	skillRepo := database.NewSkillProgressRepository(db)
	b.tasks = taskRepo
	b.skills = skillRepo
	b.profiles = database.NewProfileRepository(db)
	b.activity = database.NewUserActivityRepository(db)
	b.corsSource = database.NewCorsConfigRepository(db)
	b.ratelimitSource = database.NewRatelimitConfigRepository(db)

	redisStore := cache.NewRedisStore(redisClient, "career_coach:")
	b.jobCache = redisStore

	oidcProvider := oidc.NewProvider(database.NewOIDCConfigRepository(db))
	authenticator := oidc.NewAuthenticator(oidcProvider, oidc.NewJWKSManager(), cfg.OIDCProvider)
	b.authenticate = middleware.Auth(authenticator, database.NewUserRepository(db), logger)
	b.login = oidcProvider
	b.states = cache.NewStateStore(redisStore, 0)

	b.health = handlers.NewHealthChecker().
		Add("database", db.HealthCheck).
		Add("redis", redisStore.Ping)

	if cfg.RabbitMQURL == "" {
		logger.Warn("rabbitmq_not_configured_refreshing_skills_inline")
		b.refresh = progress.NewSkillUpdater(taskRepo, skillRepo, logger)
		return nil
	}

	rabbit, err := queue.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, logger)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, rabbit.Close)
	b.jobQueue = rabbit
	b.refresh = queue.NewSkillProgressPublisher(rabbit)
	b.health.Add("rabbitmq", rabbit.HealthCheck)

	return nil
}

// createAIProvider builds the configured model backend.
func createAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.AIProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required unless DEMO_MODE is enabled")
	}
	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}
	return ai.NewProviderRegistry().GetProvider(providerType, ai.ProviderConfig{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		Logger:    logger,
		DebugMode: debugMode,
	})
}
