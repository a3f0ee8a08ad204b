package commands

import (
	"context"
	"fmt"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured OIDC providers",
		Long:  "List all configured OIDC providers. Client secrets are never printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				configs, err := database.NewOIDCConfigRepository(db).GetAll(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(configs) == 0 {
					fmt.Fprintln(out, "No OIDC providers configured")
					return nil
				}

				fmt.Fprintln(out, "Configured OIDC providers:")
				for _, c := range configs {
					fmt.Fprintf(out, "  - Provider: %s\n", c.Provider)
					fmt.Fprintf(out, "    Issuer: %s\n", c.Issuer)
					if c.Domain != nil {
						fmt.Fprintf(out, "    Domain: %s\n", *c.Domain)
					}
					fmt.Fprintf(out, "    Client ID: %s\n", c.ClientID)
					fmt.Fprintf(out, "    Public client: %v\n", c.ClientSecret == nil)
					fmt.Fprintf(out, "    Redirect URI: %s\n", c.RedirectURI)
					fmt.Fprintf(out, "    JWKS URL: %s\n", oidc.JWKSURL(c))
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
}
