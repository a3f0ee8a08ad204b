package cache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultStateTTL bounds how long a login round trip may take.
const DefaultStateTTL = 10 * time.Minute

// StateStore issues single-use OAuth state tokens.
type StateStore struct {
	store Store
	ttl   time.Duration
}

// NewStateStore creates a state store; ttl <= 0 uses DefaultStateTTL.
func NewStateStore(store Store, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{store: store, ttl: ttl}
}

// Issue creates and records a new state token.
func (s *StateStore) Issue(ctx context.Context) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	if err := s.store.Set(ctx, stateKey(state), []byte("1"), s.ttl); err != nil {
		return "", err
	}
	return state, nil
}

// Consume reports whether state was issued and not yet used, and burns it.
func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, ok, err := s.store.Take(ctx, stateKey(state))
	return ok, err
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
