// Package cache provides a capacity-bounded in-process cache with per-entry
// TTL. The aggregator keys one bucket per health signal so unrelated signals
// never share expiry.
package cache

import (
	"context"
	"time"
)

// Well-known bucket keys used by the context aggregator.
const (
	BucketActivity = "signal:activity"
	BucketHeart    = "signal:heart"
	BucketBody     = "signal:body"
	BucketSleep    = "signal:sleep"
	BucketSnapshot = "snapshot:full"
)

// CacheService defines the cache interface.
type CacheService interface {
	// Get retrieves a value. Returns false on miss or expiry.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value with the given TTL. A non-positive TTL uses the
	// service default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Invalidate removes entries matching the pattern. Supports a trailing
	// * wildcard (e.g. "signal:*").
	Invalidate(ctx context.Context, pattern string) error
}
