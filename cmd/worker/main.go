package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/career-coach/internal/config"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/logger"
	"github.com/benvon/career-coach/internal/queue"
	"github.com/benvon/career-coach/internal/services/ai"
	"github.com/benvon/career-coach/internal/services/progress"
	"github.com/benvon/career-coach/internal/services/tasks"
	"github.com/benvon/career-coach/internal/telemetry"
	"github.com/benvon/career-coach/internal/workers"
	"go.uber.org/zap"
)

const scheduleInterval = 5 * time.Minute

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DemoMode {
		log.Fatalf("The worker does not run in demo mode")
	}
	if err := cfg.RequireWorkerDeps(); err != nil {
		log.Fatalf("Invalid worker configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

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

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.String("timezone", cfg.TimeZone),
		zap.Int("pregenerate_hour", cfg.PregenerateHour),
	)

	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
			ServiceName: "career-coach-worker",
			Endpoint:    cfg.OTELEndpoint,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	aiProvider, err := ai.NewProviderRegistry().GetProvider(cfg.AIProvider, ai.ProviderConfig{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		Logger:    zapLogger,
		DebugMode: debugMode,
	})
	if err != nil {
		zapLogger.Fatal("unsupported_ai_provider", zap.String("provider", cfg.AIProvider), zap.Error(err))
	}

	taskRepo := database.NewTaskRepository(db)
	skillRepo := database.NewSkillProgressRepository(db)
	activityRepo := database.NewUserActivityRepository(db)

	generator := tasks.NewGenerator(database.NewProfileRepository(db), taskRepo, skillRepo, aiProvider, cfg.Location(), zapLogger)
	processor := workers.NewProcessor(generator, progress.NewSkillUpdater(taskRepo, skillRepo, zapLogger), jobQueue, zapLogger)
	scheduler := workers.NewScheduler(jobQueue, activityRepo, workers.SchedulerConfig{
		Location:       cfg.Location(),
		Hour:           cfg.PregenerateHour,
		ActivityWindow: time.Duration(cfg.ActivityWindowDays) * 24 * time.Hour,
	}, zapLogger)

	go func() {
		if err := scheduler.Start(ctx, scheduleInterval); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("scheduler_stopped_with_error", zap.Error(err))
		}
	}()

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	for {
		select {
		case <-ctx.Done():
			zapLogger.Info("worker_stopped")
			return
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			zapLogger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Warn("message_channel_closed")
				return
			}
			if err := processor.ProcessJob(ctx, msg); err != nil {
				fields := []zap.Field{zap.Error(err)}
				if job := msg.GetJob(); job != nil {
					fields = append(fields, zap.String("job_id", job.ID.String()), zap.String("job_type", string(job.Type)))
				}
				zapLogger.Error("failed_to_process_job", fields...)
			}
		}
	}
}
