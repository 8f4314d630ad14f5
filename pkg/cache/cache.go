// Package cache stores routing results and rendered artifacts by content
// hash.
//
// Keys are derived from the inputs that determine a value: a route is
// keyed by its request, the obstacle snapshot and the router options, so a
// hit is always the result the router would have produced. Values are
// opaque bytes; callers choose the encoding.
//
// Three backends are provided:
//   - NullCache: never stores anything
//   - FileCache: one file per entry, for the CLI
//   - RedisCache: shared cache for server deployments
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TTLRoute   = 7 * 24 * time.Hour
	TTLDiagram = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OnceSetter is implemented by caches whose Set retries transient
// failures. SetOnce makes a single attempt.
type OnceSetter interface {
	SetOnce(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// TrySet stores data without waiting on retries: it uses SetOnce when c
// provides it and Set otherwise. Use it where a cache write must not hold
// up the caller.
func TrySet(ctx context.Context, c Cache, key string, data []byte, ttl time.Duration) error {
	if o, ok := c.(OnceSetter); ok {
		return o.SetOnce(ctx, key, data, ttl)
	}
	return c.Set(ctx, key, data, ttl)
}
