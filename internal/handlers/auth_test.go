package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/benvon/career-coach/internal/cache"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoginProvider struct {
	cfg   *models.OIDCConfig
	login *oidc.LoginConfig
	err   error
}

func (p *staticLoginProvider) GetConfig(context.Context, string) (*models.OIDCConfig, error) {
	return p.cfg, p.err
}

func (p *staticLoginProvider) GetLoginConfig(context.Context, string) (*oidc.LoginConfig, error) {
	return p.login, p.err
}

var _ LoginProvider = (*staticLoginProvider)(nil)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","id_token":"idt","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func authRouter(provider LoginProvider, states StateIssuer) *mux.Router {
	r := mux.NewRouter()
	h := NewAuthHandler(provider, states, "cognito", nil)
	h.RegisterRoutes(r.PathPrefix("/api/v1/auth").Subrouter())
	h.RegisterProtectedRoutes(r.PathPrefix("/api/v1/auth").Subrouter())
	return r
}

func testProvider(tokenURL string) *staticLoginProvider {
	return &staticLoginProvider{
		cfg: &models.OIDCConfig{Provider: "cognito", ClientID: "client-1", RedirectURI: "http://localhost:3000/callback"},
		login: &oidc.LoginConfig{
			AuthorizationEndpoint: "https://auth.example.com/oauth2/authorize",
			TokenEndpoint:         tokenURL,
			ClientID:              "client-1",
			RedirectURI:           "http://localhost:3000/callback",
			Scope:                 "openid email profile",
		},
	}
}

func TestAuthHandler_LoginAndCallback(t *testing.T) {
	t.Parallel()

	tokenSrv := newTokenServer(t)
	states := cache.NewStateStore(cache.NewMemoryStore(), 0)
	r := authRouter(testProvider(tokenSrv.URL), states)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oidc/login", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		AuthorizationURL string `json:"authorization_url"`
		State            string `json:"state"`
		ClientID         string `json:"client_id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &login))
	require.NotEmpty(t, login.State)
	assert.Equal(t, "client-1", login.ClientID)

	u, err := url.Parse(login.AuthorizationURL)
	require.NoError(t, err)
	assert.Equal(t, login.State, u.Query().Get("state"))
	assert.Equal(t, "code", u.Query().Get("response_type"))

	callback := func(code, state string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"code":%q,"state":%q}`, code, state)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/oidc/callback", strings.NewReader(body)))
		return rec
	}

	rec = callback("good-code", login.State)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens oidc.Tokens
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &tokens))
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, "idt", tokens.IDToken)

	rec = callback("good-code", login.State)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "state must be single use")
}

func TestAuthHandler_CallbackRejections(t *testing.T) {
	t.Parallel()

	tokenSrv := newTokenServer(t)

	tests := []struct {
		name       string
		body       func(state string) string
		wantStatus int
	}{
		{name: "missing code", body: func(s string) string { return fmt.Sprintf(`{"state":%q}`, s) }, wantStatus: http.StatusBadRequest},
		{name: "unknown state", body: func(string) string { return `{"code":"good-code","state":"forged"}` }, wantStatus: http.StatusUnauthorized},
		{name: "rejected code", body: func(s string) string { return fmt.Sprintf(`{"code":"bad-code","state":%q}`, s) }, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			states := cache.NewStateStore(cache.NewMemoryStore(), 0)
			state, err := states.Issue(context.Background())
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			authRouter(testProvider(tokenSrv.URL), states).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/api/v1/auth/oidc/callback", strings.NewReader(tt.body(state))))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestAuthHandler_LoginNotConfigured(t *testing.T) {
	t.Parallel()

	provider := &staticLoginProvider{err: fmt.Errorf("failed to get OIDC config: %w", database.ErrNotFound)}
	rec := httptest.NewRecorder()
	authRouter(provider, cache.NewStateStore(cache.NewMemoryStore(), 0)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oidc/login", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthHandler_DemoModeHasNoLoginRoutes(t *testing.T) {
	t.Parallel()

	r := authRouter(nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oidc/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	userID := uuid.New()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), userID))
	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &user))
	assert.Equal(t, userID, user.ID)
}
