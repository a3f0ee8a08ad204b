package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/career-coach/internal/config"
	"github.com/benvon/career-coach/internal/database"
)

// withDatabase loads the configuration, opens the database and runs fn.
func withDatabase(ctx context.Context, fn func(ctx context.Context, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(ctx, db)
}
