package models

import (
	"time"

	"github.com/google/uuid"
)

// CorsConfig is the database-backed CORS policy reloaded by the server.
type CorsConfig struct {
	ConfigKey string `json:"config_key"`
	// AllowedOrigins is a comma-separated list.
	AllowedOrigins   string    `json:"allowed_origins"`
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RatelimitConfig holds a limiter rate in ulule notation ("5-S", "100-M").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OIDCConfig describes the identity provider used to verify bearer tokens.
type OIDCConfig struct {
	ID       uuid.UUID `json:"id"`
	Provider string    `json:"provider"`
	Issuer   string    `json:"issuer"`
	// Domain is the hosted login domain when it differs from the issuer
	// (Cognito custom domains).
	Domain   *string `json:"domain,omitempty"`
	ClientID string  `json:"client_id"`
	// ClientSecret is nil for public clients.
	ClientSecret *string   `json:"client_secret,omitempty"`
	RedirectURI  string    `json:"redirect_uri"`
	JWKSUrl      *string   `json:"jwks_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
