// Package cache stores short-lived values in Redis, with an in-memory
// fallback for single-instance deployments.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a TTL key/value store.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and deletes it in one step.
	Take(ctx context.Context, key string) ([]byte, bool, error)
}

// NewRedisClient parses url and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key: %w", err)
	}
	return v, true, nil
}

// Set stores value under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}
	return nil
}

// Take reads and deletes key with GETDEL.
func (s *RedisStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to take cache key: %w", err)
	}
	return v, true, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the live value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores value under key for ttl. Expired entries are swept on write.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	return nil
}

// Take reads and deletes key.
func (s *MemoryStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if ok {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	}
	return v, ok, err
}

// GetJSON decodes the value under key into dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return s.Set(ctx, key, raw, ttl)
}
