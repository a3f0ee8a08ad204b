package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/career-coach/internal/catalog"
	"github.com/benvon/career-coach/internal/config"
	"github.com/benvon/career-coach/internal/handlers"
	"github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/middleware"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/benvon/career-coach/internal/services/career"
	"github.com/benvon/career-coach/internal/services/progress"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/benvon/career-coach/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const (
	serviceName = "career-coach-api"

	// requestTimeout bounds every route except the mentor stream, which
	// lives as long as the model keeps answering.
	requestTimeout = 90 * time.Second
	reloadInterval = time.Minute

	dlqInterval  = time.Hour
	dlqRetention = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{
		Debug:      debugMode,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.Bool("demo_mode", cfg.DemoMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.String("timezone", cfg.TimeZone),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracing := initTracing(cfg, zapLogger)
	if tracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var b *backend
	if cfg.DemoMode {
		b, err = newDemoBackend(cfg, zapLogger)
	} else {
		b, err = newBackend(ctx, cfg, zapLogger, debugMode)
	}
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_backend", zap.Error(err))
	}
	defer b.close(zapLogger)

	roles, err := catalog.Default()
	if err != nil {
		zapLogger.Fatal("failed_to_load_role_catalog", zap.Error(err))
	}

	loc := cfg.Location()
	generator := tasks.NewGenerator(b.profiles, b.tasks, b.skills, b.advisor, loc, zapLogger)
	completer := tasks.NewCompleter(b.tasks, b.refresh, zapLogger)
	progressService := progress.NewService(b.tasks, b.skills, loc)
	careerService := career.NewService(b.advisor, b.profiles, b.skills, b.jobCache, cfg.JobCacheTTL, zapLogger)

	taskHandler := handlers.NewTaskHandler(generator, completer, zapLogger)
	profileHandler := handlers.NewProfileHandler(b.profiles, roles, zapLogger)
	progressHandler := handlers.NewProgressHandler(progressService, zapLogger)
	careerHandler := handlers.NewCareerHandler(careerService, zapLogger)
	authHandler := handlers.NewAuthHandler(b.login, b.states, cfg.OIDCProvider, zapLogger)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, the first one
	// registered being the outermost wrapper.
	if tracing != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.RequestID)
	corsReloader := middleware.NewCORSReloader(b.corsSource, cfg.FrontendURL, zapLogger, reloadInterval)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	if cfg.HTTPLogging {
		r.Use(middleware.Logging(zapLogger))
	}

	r.HandleFunc("/healthz", b.health.HealthCheck).Methods(http.MethodGet)
	if cfg.OpenAPIEnabled {
		handlers.NewOpenAPIHandler(nil).RegisterRoutes(r)
	}

	// The reloader swaps its wrapped handler on reload, so it guards exactly
	// one subrouter.
	rateLimitReloader := middleware.NewRateLimitReloader(b.limiterStore, b.ratelimitSource, middleware.DefaultRatelimitRate, zapLogger, reloadInterval)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimitReloader.Middleware())

	authHandler.RegisterRoutes(api.PathPrefix("/auth").Subrouter())

	activityTracker := middleware.NewActivityTracker(b.activity, middleware.DefaultActivityInterval, zapLogger)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(b.authenticate)
	protected.Use(activityTracker.Middleware)

	// Streams must flush as they go; http.TimeoutHandler buffers the body.
	careerHandler.RegisterStreamRoutes(protected.PathPrefix("").Subrouter())

	timed := protected.PathPrefix("").Subrouter()
	timed.Use(middleware.Timeout(requestTimeout))
	authHandler.RegisterProtectedRoutes(timed.PathPrefix("/auth").Subrouter())
	taskHandler.RegisterRoutes(timed.PathPrefix("/tasks").Subrouter())
	profileHandler.RegisterRoutes(timed)
	progressHandler.RegisterRoutes(timed)
	careerHandler.RegisterRoutes(timed)

	// Preflight requests are answered by the CORS middleware; this keeps
	// unmatched OPTIONS from turning into 405s.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              cfg.ServerHost + ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write deadline: mentor answers stream. Everything else is
		// bounded by requestTimeout.
		WriteTimeout:   0,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go corsReloader.Start(ctx)
	go rateLimitReloader.Start(ctx)
	startDLQCollector(ctx, b.jobQueue, zapLogger)

	go func() {
		zapLogger.Info("server_starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("server_failed_to_start", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// initTracing installs the OTLP tracer provider when enabled. Failures are
// logged and tracing stays off.
func initTracing(cfg *config.Config, zapLogger *zap.Logger) shutdowner {
	if !cfg.OTELEnabled {
		return nil
	}
	if cfg.OTELEndpoint == "" {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		return nil
	}
	tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return nil
	}
	zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	return tp
}

// startDLQCollector purges old dead-lettered jobs when the queue supports it.
func startDLQCollector(ctx context.Context, jobQueue queue.JobQueue, zapLogger *zap.Logger) {
	purger, ok := jobQueue.(queue.DLQPurger)
	if !ok {
		return
	}
	gc := queue.NewGarbageCollector(purger, dlqInterval, dlqRetention, zapLogger)
	go func() {
		if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", dlqInterval),
		zap.Duration("retention", dlqRetention),
	)
}
