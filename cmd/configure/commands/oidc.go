package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/validation"
	"github.com/spf13/cobra"
)

// oidcFlags are the settings accepted by "oidc set". JSON names match the
// flag names so validation messages point at the right flag.
type oidcFlags struct {
	Issuer       string `json:"issuer" validate:"required,url"`
	Domain       string `json:"domain"`
	ClientID     string `json:"client-id" validate:"required"`
	ClientSecret string `json:"client-secret"`
	RedirectURI  string `json:"redirect-uri" validate:"required,url"`
	JWKSURL      string `json:"jwks-url" validate:"omitempty,url"`
}

func (f oidcFlags) config(provider string) *models.OIDCConfig {
	c := &models.OIDCConfig{
		Provider:    provider,
		Issuer:      strings.TrimSuffix(f.Issuer, "/"),
		ClientID:    f.ClientID,
		RedirectURI: f.RedirectURI,
	}
	if f.Domain != "" {
		c.Domain = &f.Domain
	}
	if f.ClientSecret != "" {
		c.ClientSecret = &f.ClientSecret
	}
	jwksURL := f.JWKSURL
	if jwksURL == "" {
		jwksURL = c.Issuer + "/.well-known/jwks.json"
	}
	c.JWKSUrl = &jwksURL
	return c
}

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oidc",
		Short: "Manage OIDC providers",
		Long:  "Create, update or remove the identity providers bearer tokens are verified against.",
	}
	cmd.AddCommand(newOIDCSetCmd())
	cmd.AddCommand(newOIDCDeleteCmd())
	return cmd
}

func newOIDCSetCmd() *cobra.Command {
	var flags oidcFlags

	cmd := &cobra.Command{
		Use:   "set <provider-name>",
		Short: "Create or update an OIDC provider",
		Long:  "Provider name can be any identifier (e.g. 'cognito', 'okta', 'auth0'); the server uses OIDC_PROVIDER.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := strings.TrimSpace(args[0])
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if err := validation.Struct(flags); err != nil {
				return err
			}

			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				c := flags.config(provider)
				if err := database.NewOIDCConfigRepository(db).Upsert(ctx, c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved OIDC configuration for provider: %s\n", provider)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.Issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&flags.Domain, "domain", "", "Hosted login domain when it differs from the issuer (Cognito custom domains)")
	cmd.Flags().StringVar(&flags.ClientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&flags.ClientSecret, "client-secret", "", "OAuth2 client secret (omit for public clients)")
	cmd.Flags().StringVar(&flags.RedirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&flags.JWKSURL, "jwks-url", "", "JWKS URL (defaults to <issuer>/.well-known/jwks.json)")

	return cmd
}

func newOIDCDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider-name>",
		Short: "Remove an OIDC provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				if err := database.NewOIDCConfigRepository(db).Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted OIDC configuration for provider: %s\n", args[0])
				return nil
			})
		},
	}
}
