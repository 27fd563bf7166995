package domain

import "errors"

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("key not found")

// ErrStorageUnavailable is returned by backends that cannot be reached or written to.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrQuotaExceeded is returned by backends that refuse a write because of capacity limits.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrConfigMissing is returned when the engine is started without a configuration.
var ErrConfigMissing = errors.New("configuration missing")
