package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
)

// ConfigSource loads identity provider settings.
type ConfigSource interface {
	GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error)
}

var _ ConfigSource = (*database.OIDCConfigRepository)(nil)

// Provider manages OIDC provider configuration
type Provider struct {
	source     ConfigSource
	httpClient *http.Client
}

// NewProvider creates a new OIDC provider manager
func NewProvider(source ConfigSource) *Provider {
	return &Provider{source: source, httpClient: &http.Client{Timeout: 5 * time.Second}}
}

// GetConfig retrieves OIDC configuration for a provider
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.source.GetByProvider(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return config, nil
}

// LoginConfig contains OIDC login configuration for frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// GetLoginConfig returns the endpoints and client settings for the code flow
func (p *Provider) GetLoginConfig(ctx context.Context, providerName string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	authEndpoint, tokenEndpoint := p.discover(ctx, config.Issuer)

	// Cognito only serves the OAuth2 endpoints on the hosted domain.
	if config.Domain != nil && *config.Domain != "" && strings.Contains(config.Issuer, "cognito-idp.") {
		base := strings.TrimSuffix(*config.Domain, "/")
		if !strings.HasPrefix(base, "https://") {
			base = "https://" + base
		}
		authEndpoint = base + "/oauth2/authorize"
		tokenEndpoint = base + "/oauth2/token"
	}

	issuer := strings.TrimSuffix(config.Issuer, "/")
	if authEndpoint == "" {
		authEndpoint = issuer + "/oauth2/authorize"
	}
	if tokenEndpoint == "" {
		tokenEndpoint = issuer + "/oauth2/token"
	}

	return &LoginConfig{
		AuthorizationEndpoint: authEndpoint,
		TokenEndpoint:         tokenEndpoint,
		ClientID:              config.ClientID,
		RedirectURI:           config.RedirectURI,
		Scope:                 strings.Join(DefaultScopes, " "),
	}, nil
}

// discover reads the endpoints from the discovery document; empty strings
// when it is unavailable.
func (p *Provider) discover(ctx context.Context, issuer string) (authEndpoint, tokenEndpoint string) {
	url := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", ""
	}

	var doc struct {
		AuthorizationEndpoint string `json:"authorization_endpoint"`
		TokenEndpoint         string `json:"token_endpoint"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", ""
	}
	return doc.AuthorizationEndpoint, doc.TokenEndpoint
}

// JWKSURL returns the configured key set location, defaulting to the
// issuer's well-known path.
func JWKSURL(config *models.OIDCConfig) string {
	if config.JWKSUrl != nil && *config.JWKSUrl != "" {
		return *config.JWKSUrl
	}
	return strings.TrimSuffix(config.Issuer, "/") + "/.well-known/jwks.json"
}
