package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// defaultSettingsKey is the single row key used by the runtime-tunable settings.
const defaultSettingsKey = "default"

// CorsConfigRepository handles CORS configuration in the database.
type CorsConfigRepository struct {
	db *DB
}

// NewCorsConfigRepository creates a new CORS config repository.
func NewCorsConfigRepository(db *DB) *CorsConfigRepository {
	return &CorsConfigRepository{db: db}
}

// Get returns the CORS config, or nil when none was stored.
func (r *CorsConfigRepository) Get(ctx context.Context) (*models.CorsConfig, error) {
	c := &models.CorsConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at
		FROM cors_config WHERE config_key = $1
	`, defaultSettingsKey).Scan(&c.ConfigKey, &c.AllowedOrigins, &c.AllowCredentials, &c.MaxAge, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cors config: %w", err)
	}
	return c, nil
}

// Set upserts the CORS config.
func (r *CorsConfigRepository) Set(ctx context.Context, c *models.CorsConfig) error {
	origins := strings.Join(AllowedOriginsSlice(c.AllowedOrigins), ",")
	if origins == "" {
		return fmt.Errorf("allowed_origins cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cors_config (config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (config_key) DO UPDATE SET
			allowed_origins = EXCLUDED.allowed_origins,
			allow_credentials = EXCLUDED.allow_credentials,
			max_age = EXCLUDED.max_age,
			updated_at = EXCLUDED.updated_at
	`, defaultSettingsKey, origins, c.AllowCredentials, c.MaxAge, now)
	if err != nil {
		return fmt.Errorf("set cors config: %w", err)
	}
	return nil
}

// AllowedOriginsSlice splits a comma-separated origin list, trimming blanks
// and dropping duplicates while keeping the first-seen order.
func AllowedOriginsSlice(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		s := strings.TrimSpace(part)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// RatelimitConfigRepository handles the API rate limit in the database.
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get returns the rate limit config, or nil when none was stored.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	c := &models.RatelimitConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, defaultSettingsKey).Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// Set upserts the rate, e.g. "5-S" or "100-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, defaultSettingsKey, rate, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}

const oidcColumns = `id, provider, issuer, domain, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at`

// OIDCConfigRepository handles identity provider settings
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

func scanOIDCConfig(row rowScanner) (*models.OIDCConfig, error) {
	c := &models.OIDCConfig{}
	err := row.Scan(&c.ID, &c.Provider, &c.Issuer, &c.Domain, &c.ClientID, &c.ClientSecret,
		&c.RedirectURI, &c.JWKSUrl, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Upsert stores the configuration keyed by provider name
func (r *OIDCConfigRepository) Upsert(ctx context.Context, c *models.OIDCConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO oidc_config (`+oidcColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (provider) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			domain = EXCLUDED.domain,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			redirect_uri = EXCLUDED.redirect_uri,
			jwks_url = EXCLUDED.jwks_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, c.ID, c.Provider, c.Issuer, c.Domain, c.ClientID, c.ClientSecret, c.RedirectURI, c.JWKSUrl, now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert OIDC config: %w", err)
	}
	return nil
}

// GetByProvider retrieves an OIDC configuration by provider name
func (r *OIDCConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	c, err := scanOIDCConfig(r.db.QueryRowContext(ctx,
		`SELECT `+oidcColumns+` FROM oidc_config WHERE provider = $1`, provider))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("OIDC config for provider %s: %w", provider, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return c, nil
}

// GetAll retrieves all OIDC configurations ordered by provider
func (r *OIDCConfigRepository) GetAll(ctx context.Context) ([]*models.OIDCConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+oidcColumns+` FROM oidc_config ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to query OIDC configs: %w", err)
	}
	defer closeRows(rows)

	var configs []*models.OIDCConfig
	for rows.Next() {
		c, err := scanOIDCConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan OIDC config: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating OIDC configs: %w", err)
	}
	return configs, nil
}

// Delete removes the configuration of a provider
func (r *OIDCConfigRepository) Delete(ctx context.Context, provider string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oidc_config WHERE provider = $1`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete OIDC config: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("OIDC config for provider %s: %w", provider, ErrNotFound)
	}
	return nil
}
