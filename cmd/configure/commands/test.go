package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test OIDC configuration",
		Long:  "Resolve the login endpoints and fetch the signing keys of a configured provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return withDatabase(ctx, func(ctx context.Context, db *database.DB) error {
				out := cmd.OutOrStdout()
				p := oidc.NewProvider(database.NewOIDCConfigRepository(db))

				c, err := p.GetConfig(ctx, provider)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Testing OIDC configuration for provider: %s\n", provider)
				fmt.Fprintf(out, "Issuer: %s\n", c.Issuer)

				login, err := p.GetLoginConfig(ctx, provider)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nAuthorization endpoint: %s\n", login.AuthorizationEndpoint)
				fmt.Fprintf(out, "Token endpoint: %s\n", login.TokenEndpoint)

				jwksURL := oidc.JWKSURL(c)
				fmt.Fprintf(out, "\nFetching signing keys: %s\n", jwksURL)
				set, err := oidc.NewJWKSManager().GetJWKS(ctx, jwksURL)
				if err != nil {
					return fmt.Errorf("failed to fetch JWKS: %w", err)
				}
				if set.Len() == 0 {
					return fmt.Errorf("JWKS at %s contains no keys", jwksURL)
				}
				fmt.Fprintf(out, "✓ JWKS endpoint serves %d key(s)\n", set.Len())

				fmt.Fprintln(out, "\n✓ OIDC configuration test passed")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider name to test (required)")

	return cmd
}
