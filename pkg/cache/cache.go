// Package cache stores layouts and rendered artifacts keyed by a content
// hash of their inputs.
//
// Four backends implement [Cache]:
//
//   - [FileCache] keeps one JSON file per entry under a directory (CLI use).
//   - [RedisCache] stores entries in Redis with native expiry.
//   - [MongoCache] stores entries in a MongoDB collection with a TTL index.
//   - [NullCache] never stores anything.
//
// Keys come from a [Keyer]. The default keyer hashes the frequency table
// together with every option that influences the result, so a changed seed
// or canvas never returns a stale layout.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A zero ttl means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
