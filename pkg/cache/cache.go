// Package cache stores computed layouts and sweep results.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// keeps entries under a local directory for the CLI, and [RedisCache]
// shares them between API server instances. Keys come from a [Keyer] so
// callers never assemble cache keys by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	// A missing or expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes. Layouts are only cached for seeded runs, which are
// deterministic, so they can live long; sweeps are larger and cheaper to
// recompute than to keep forever.
const (
	TTLLayout = 30 * 24 * time.Hour
	TTLSweep  = 7 * 24 * time.Hour
)
