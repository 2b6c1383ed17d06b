// Package cache stores computed layouts and rendered chart artifacts.
//
// Entries are addressed by keys built from a content hash of the input and
// the options that influence the output, so identical requests hit the cache
// and any change to the model or options misses it:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: "svg", Width: 800})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data
//	}
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for the
// HTTP server, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was found. A missing or
	// expired entry is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
