package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Store implements ports.Backend in memory.
// Safe for concurrent use.
type Store struct {
	data  map[string]string
	mu    sync.RWMutex
	quota int
	used  int
}

// Option configures a Store.
type Option func(*Store)

// WithQuota caps the total size (keys plus values, in bytes) the store accepts.
// Writes past the cap fail with domain.ErrQuotaExceeded, like a browser storage area.
func WithQuota(bytes int) Option {
	return func(s *Store) {
		s.quota = bytes
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value from memory.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores a value in memory.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used
	if old, ok := s.data[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("set %q: %w", key, domain.ErrQuotaExceeded)
	}

	s.data[key] = value
	s.used = used
	return nil
}

// Remove deletes a key.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Keys returns every stored key.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
