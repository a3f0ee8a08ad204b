package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations. Each file runs in its own transaction.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Migrations()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		ran := false
		err = db.WithTx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
			if err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil
			}
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, err
		}
		if ran {
			applied = append(applied, name)
		}
	}
	return applied, nil
}
