package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerHost       string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	OpenAIKey        string
	AIProvider       string
	AIModel          string
	AIBaseURL        string
	EnableHSTS       bool
	OIDCProvider     string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	WorkerDebugMode  bool
	ServerDebugMode  bool
	HTTPLogging      bool
	OTELEnabled      bool
	OTELEndpoint     string

	// DemoMode serves fixed fixture data with a fixed identity instead of
	// Postgres, OIDC and the AI provider.
	DemoMode bool

	TimeZone           string
	JobCacheTTL        time.Duration
	PregenerateHour    int
	ActivityWindowDays int

	LogFile        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	LogMaxAgeDays  int
	OpenAPIEnabled bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// win over its values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ServerHost:         getEnv("SERVER_HOST", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		AIProvider:         getEnv("AI_PROVIDER", "openai"),
		AIModel:            getEnv("AI_MODEL", ""),
		AIBaseURL:          getEnv("OPENAI_BASE_URL", getEnv("AI_BASE_URL", "")),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		OIDCProvider:       getEnv("OIDC_PROVIDER", "cognito"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:    getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", getEnvBool("ENABLE_DEBUG", false)),
		HTTPLogging:        getEnvBool("ENABLE_HTTP_LOGGING", true),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		DemoMode:           getEnvBool("DEMO_MODE", false),
		TimeZone:           getEnv("TIMEZONE", "UTC"),
		JobCacheTTL:        time.Duration(getEnvInt("JOB_CACHE_TTL_MINUTES", 60)) * time.Minute,
		PregenerateHour:    getEnvInt("PREGENERATE_HOUR", 6),
		ActivityWindowDays: getEnvInt("ACTIVITY_WINDOW_DAYS", 3),
		LogFile:            getEnv("LOG_FILE", ""),
		LogMaxSizeMB:       getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays:      getEnvInt("LOG_MAX_AGE_DAYS", 28),
		OpenAPIEnabled:     getEnvBool("OPENAPI_ENABLED", true),
	}

	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.TimeZone, err)
	}

	if cfg.PregenerateHour < 0 || cfg.PregenerateHour > 23 {
		return nil, fmt.Errorf("PREGENERATE_HOUR must be between 0 and 23")
	}

	if cfg.DemoMode {
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// Location returns the configured time zone. Calendar dates of tasks are
// evaluated in this zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequireWorkerDeps validates the settings only the worker depends on.
func (c *Config) RequireWorkerDeps() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the worker")
	}
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the worker")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
