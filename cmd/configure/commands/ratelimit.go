package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/middleware"
	"github.com/benvon/career-coach/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the per-client API rate (e.g. 5-S, 100-M). The server reloads this every minute.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				c, err := database.NewRatelimitConfigRepository(db).Get(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintf(out, "No rate limit stored; the server uses %s. Use 'ratelimit set' to change it.\n", middleware.DefaultRatelimitRate)
					return nil
				}
				fmt.Fprintln(out, "Rate limit configuration:")
				fmt.Fprintf(out, "  Rate: %s\n", c.Rate)
				return nil
			})
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update the rate limit (e.g. 5-S, 100-M, 1000-H).",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if err := validateRate(rate); err != nil {
				return err
			}
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				if err := database.NewRatelimitConfigRepository(db).Set(ctx, &models.RatelimitConfig{Rate: rate}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}

// validateRate rejects rates the limiter cannot parse, so a typo never
// reaches the running servers.
func validateRate(rate string) error {
	if rate == "" {
		return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
	}
	if _, err := limiter.NewRateFromFormatted(rate); err != nil {
		return fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	return nil
}
