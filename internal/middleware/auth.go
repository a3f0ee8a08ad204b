package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/services/oidc"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// UserUpserter mirrors identity provider subjects into local users.
type UserUpserter interface {
	UpsertByProviderID(ctx context.Context, providerID, email string, name *string, emailVerified bool) (*models.User, error)
}

var (
	_ TokenVerifier = (*oidc.Authenticator)(nil)
	_ UserUpserter  = (*database.UserRepository)(nil)
)

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	return request.UserFromContext(r)
}

// Auth creates authentication middleware that validates bearer tokens and
// attaches the local user to the request context.
func Auth(verifier TokenVerifier, users UserUpserter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				if errors.Is(err, oidc.ErrInvalidToken) {
					logger.Debug("token_rejected", zap.Error(err))
					respondError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				logger.Error("token_verification_failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Authentication unavailable")
				return
			}

			var name *string
			if claims.Name != "" {
				name = &claims.Name
			}
			user, err := users.UpsertByProviderID(ctx, claims.Sub, claims.Email, name, true)
			if err != nil {
				logger.Error("user_upsert_failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

// DemoAuth authenticates every request as user.
func DemoAuth(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := *user
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), &u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   false,
		"error":     http.StatusText(status),
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
