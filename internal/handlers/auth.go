package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/career-coach/internal/cache"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LoginProvider resolves the configured identity provider.
type LoginProvider interface {
	GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error)
	GetLoginConfig(ctx context.Context, providerName string) (*oidc.LoginConfig, error)
}

// StateIssuer issues and burns single-use OAuth state tokens.
type StateIssuer interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) (bool, error)
}

var (
	_ LoginProvider = (*oidc.Provider)(nil)
	_ StateIssuer   = (*cache.StateStore)(nil)
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	provider     LoginProvider
	states       StateIssuer
	providerName string
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. provider and states may be nil
// when no login flow is served, e.g. in demo mode.
func NewAuthHandler(provider LoginProvider, states StateIssuer, providerName string, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{provider: provider, states: states, providerName: providerName, logger: logger}
}

// RegisterRoutes registers the public login routes
// The router should already have the /api/v1/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	if h.provider == nil || h.states == nil {
		return
	}
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
	r.HandleFunc("/oidc/callback", h.OIDCCallback).Methods("POST")
}

// RegisterProtectedRoutes registers routes that need an authenticated user
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// LoginResponse is what the frontend needs to start the code flow
type LoginResponse struct {
	*oidc.LoginConfig
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// GetOIDCLogin returns the provider's authorization URL with a fresh state
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, login, err := h.loadConfig(ctx)
	if err != nil {
		h.respondConfigError(w, err)
		return
	}

	state, err := h.states.Issue(ctx)
	if err != nil {
		h.logger.Error("oauth_state_issue_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start login")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		LoginConfig:      login,
		AuthorizationURL: oidc.NewClient(cfg, login).AuthCodeURL(state),
		State:            state,
	})
}

// CallbackRequest carries the authorization response
type CallbackRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

// OIDCCallback exchanges an authorization code for tokens. The state must
// have been issued by GetOIDCLogin and is accepted once.
func (h *AuthHandler) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CallbackRequest
	if err := decodeJSON(r, &req, false); err != nil || req.Code == "" || req.State == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "code and state are required")
		return
	}

	ok, err := h.states.Consume(ctx, req.State)
	if err != nil {
		h.logger.Error("oauth_state_lookup_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to verify login state")
		return
	}
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Unknown or expired login state")
		return
	}

	cfg, login, err := h.loadConfig(ctx)
	if err != nil {
		h.respondConfigError(w, err)
		return
	}

	tokens, err := oidc.NewClient(cfg, login).ExchangeCode(ctx, req.Code)
	if err != nil {
		h.logger.Warn("oauth_code_exchange_failed", zap.Error(err))
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authorization code was rejected")
		return
	}
	respondJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) loadConfig(ctx context.Context) (*models.OIDCConfig, *oidc.LoginConfig, error) {
	cfg, err := h.provider.GetConfig(ctx, h.providerName)
	if err != nil {
		return nil, nil, err
	}
	login, err := h.provider.GetLoginConfig(ctx, h.providerName)
	if err != nil {
		return nil, nil, err
	}
	return cfg, login, nil
}

func (h *AuthHandler) respondConfigError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Login is not configured")
		return
	}
	h.logger.Error("oidc_config_load_failed", zap.String("provider", h.providerName), zap.Error(err))
	respondJSONError(w, http.StatusInternalServerError, "Failed to get OIDC configuration", "Failed to get OIDC configuration")
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
