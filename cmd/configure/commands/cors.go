package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update the origins allowed to call the API. The server reloads this every minute.",
	}
	cmd.AddCommand(newCorsListCmd())
	cmd.AddCommand(newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				c, err := database.NewCorsConfigRepository(db).Get(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintln(out, "No CORS configuration stored; the server allows FRONTEND_URL. Use 'cors set' to add one.")
					return nil
				}
				fmt.Fprintln(out, "CORS configuration:")
				for _, origin := range database.AllowedOriginsSlice(c.AllowedOrigins) {
					fmt.Fprintf(out, "  - %s\n", origin)
				}
				fmt.Fprintf(out, "  Allow credentials: %v\n", c.AllowCredentials)
				fmt.Fprintf(out, "  Max-Age: %d\n", c.MaxAge)
				fmt.Fprintf(out, "  Updated: %s\n", c.UpdatedAt.Format("2006-01-02 15:04:05"))
				return nil
			})
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Replace the allowed origins (comma-separated, e.g. https://coach.example.com).",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age cannot be negative")
			}
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				c := &models.CorsConfig{
					AllowedOrigins:   origins,
					AllowCredentials: allowCreds,
					MaxAge:           maxAge,
				}
				if err := database.NewCorsConfigRepository(db).Set(ctx, c); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}
