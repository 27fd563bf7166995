package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score used when no native TTL is configured (2100-01-01).
const farFuture = 4102444800

// Store implements ports.Backend using Redis.
// Keys are namespaced by prefix and tracked in a sorted-set index scored by native expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets a native Redis expiration on every key.
// The ledger envelope expiry still applies; this only bounds how long Redis keeps data.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the Redis namespace for ledger keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "leadchat:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) indexKey() string {
	return s.prefix + "__index"
}

// Get retrieves a value from Redis.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return val, nil
}

// Set stores a value and records it in the index.
func (s *Store) Set(ctx context.Context, key, value string) error {
	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(key), value, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Remove deletes a key and its index entry.
func (s *Store) Remove(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Keys returns the live keys from the index, pruning entries whose native TTL has passed.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired keys: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
