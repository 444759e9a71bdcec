// Package cache provides persistent byte caches for registry responses.
//
// Backends implement [Cache]:
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout, and [ScopedKeyer] can isolate tenants or environments that share
// one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
