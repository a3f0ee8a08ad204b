package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/services/oidc"
	"github.com/google/uuid"
)

type mockVerifier struct {
	verifyFunc func(ctx context.Context, token string) (*models.JWTClaims, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*models.JWTClaims, error) {
	return m.verifyFunc(ctx, token)
}

type mockUpserter struct {
	upsertFunc func(ctx context.Context, providerID, email string, name *string, emailVerified bool) (*models.User, error)
}

func (m *mockUpserter) UpsertByProviderID(ctx context.Context, providerID, email string, name *string, emailVerified bool) (*models.User, error) {
	return m.upsertFunc(ctx, providerID, email, name, emailVerified)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	okVerifier := &mockVerifier{verifyFunc: func(_ context.Context, token string) (*models.JWTClaims, error) {
		if token != "good-token" {
			return nil, fmt.Errorf("%w: bad signature", oidc.ErrInvalidToken)
		}
		return &models.JWTClaims{Sub: "sub-1", Email: "a@example.com", Name: "Ada"}, nil
	}}
	okUsers := &mockUpserter{upsertFunc: func(_ context.Context, providerID, email string, name *string, _ bool) (*models.User, error) {
		if providerID != "sub-1" || email != "a@example.com" || name == nil || *name != "Ada" {
			return nil, fmt.Errorf("unexpected upsert %s %s %v", providerID, email, name)
		}
		return &models.User{ID: userID, Email: email, ProviderID: &providerID, Name: name}, nil
	}}

	tests := []struct {
		name       string
		header     string
		verifier   TokenVerifier
		users      UserUpserter
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good-token", verifier: okVerifier, users: okUsers, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good-token", verifier: okVerifier, users: okUsers, wantStatus: http.StatusOK},
		{name: "missing header", header: "", verifier: okVerifier, users: okUsers, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", verifier: okVerifier, users: okUsers, wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", verifier: okVerifier, users: okUsers, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer forged", verifier: okVerifier, users: okUsers, wantStatus: http.StatusUnauthorized},
		{
			name:   "verifier unavailable",
			header: "Bearer good-token",
			verifier: &mockVerifier{verifyFunc: func(context.Context, string) (*models.JWTClaims, error) {
				return nil, errors.New("jwks fetch failed")
			}},
			users:      okUsers,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:     "upsert failure",
			header:   "Bearer good-token",
			verifier: okVerifier,
			users: &mockUpserter{upsertFunc: func(context.Context, string, string, *string, bool) (*models.User, error) {
				return nil, errors.New("db down")
			}},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/today", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Auth(tt.verifier, tt.users, nil)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if gotUser == nil || gotUser.ID != userID {
					t.Fatalf("Expected user %s in context, got %+v", userID, gotUser)
				}
				return
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if body["success"] != false {
				t.Errorf("Expected success=false, got %v", body["success"])
			}
			if body["error"] != http.StatusText(tt.wantStatus) {
				t.Errorf("Expected error %q, got %v", http.StatusText(tt.wantStatus), body["error"])
			}
		})
	}
}

func TestDemoAuth(t *testing.T) {
	t.Parallel()

	demoUser := &models.User{ID: uuid.New(), Email: "demo@example.com"}

	var gotUser *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r)
		gotUser.Email = "mutated@example.com"
	})

	rec := httptest.NewRecorder()
	DemoAuth(demoUser)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if gotUser == nil || gotUser.ID != demoUser.ID {
		t.Fatalf("Expected demo user in context, got %+v", gotUser)
	}
	if demoUser.Email != "demo@example.com" {
		t.Errorf("Expected demo user to be copied per request, shared value changed to %q", demoUser.Email)
	}
}
