package ports

import "context"

// Backend defines the raw key-value storage the ledger writes envelopes into.
// Values are opaque strings; expiry is handled by the ledger, not the backend.
type Backend interface {
	// Get returns the stored value for key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every key currently stored.
	Keys(ctx context.Context) ([]string, error)
}
