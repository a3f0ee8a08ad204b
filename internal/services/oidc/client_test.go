package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/benvon/career-coach/internal/models"
)

var testLogin = &LoginConfig{
	AuthorizationEndpoint: "https://auth.example.com/oauth2/authorize",
	TokenEndpoint:         "https://auth.example.com/oauth2/token",
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		oidcConfig *models.OIDCConfig
		wantSecret string
	}{
		{
			name: "with client secret",
			oidcConfig: &models.OIDCConfig{
				ClientID:     "test-client-id",
				ClientSecret: stringPtr("test-secret"),
				RedirectURI:  "http://localhost:3000/callback",
			},
			wantSecret: "test-secret",
		},
		{
			name: "without client secret (public client)",
			oidcConfig: &models.OIDCConfig{
				ClientID:    "test-client-id",
				RedirectURI: "http://localhost:3000/callback",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := NewClient(tt.oidcConfig, testLogin)
			if client.config.ClientID != "test-client-id" {
				t.Errorf("Expected ClientID 'test-client-id', got '%s'", client.config.ClientID)
			}
			if client.config.ClientSecret != tt.wantSecret {
				t.Errorf("Expected ClientSecret %q, got %q", tt.wantSecret, client.config.ClientSecret)
			}
			if client.config.Endpoint.TokenURL != testLogin.TokenEndpoint {
				t.Errorf("Expected token URL %s, got %s", testLogin.TokenEndpoint, client.config.Endpoint.TokenURL)
			}
		})
	}
}

func TestClient_AuthCodeURL(t *testing.T) {
	t.Parallel()

	client := NewClient(&models.OIDCConfig{
		ClientID:    "test-client-id",
		RedirectURI: "http://localhost:3000/callback",
	}, testLogin)

	raw := client.AuthCodeURL("test-state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthCodeURL returned invalid URL %q: %v", raw, err)
	}
	q := u.Query()
	if got := q.Get("state"); got != "test-state-123" {
		t.Errorf("state = %q", got)
	}
	if got := q.Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id = %q", got)
	}
	if got := q.Get("scope"); got != "openid email profile" {
		t.Errorf("scope = %q", got)
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "abc" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"id_token":      "id",
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	client := NewClient(&models.OIDCConfig{ClientID: "cid", RedirectURI: "http://localhost/cb"},
		&LoginConfig{AuthorizationEndpoint: srv.URL + "/authorize", TokenEndpoint: srv.URL + "/token"})

	tokens, err := client.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if tokens.AccessToken != "access" || tokens.IDToken != "id" || tokens.RefreshToken != "refresh" {
		t.Errorf("unexpected tokens %+v", tokens)
	}

	if _, err := client.ExchangeCode(context.Background(), "wrong"); err == nil {
		t.Error("Expected error for rejected code")
	}
}

func stringPtr(s string) *string {
	return &s
}
