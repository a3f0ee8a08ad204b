package commands

import (
	"context"
	"fmt"
	"path"

	"github.com/benvon/career-coach/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply every embedded schema migration that has not run yet. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				names, err := database.Migrations()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, path.Base(name))
				}
				return nil
			}

			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				applied, err := db.Migrate(ctx)
				for _, name := range applied {
					fmt.Fprintf(out, "Applied %s\n", path.Base(name))
				}
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(out, "Database schema is up to date.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List embedded migrations without connecting")
	return cmd
}
