package ports

import (
	"context"
	"time"
)

// RenderCache stores encoded plot images (PNG or PDF bytes).
type RenderCache interface {
	// Get returns the bytes stored under key.
	// Returns domain.ErrCacheMiss if the key is absent or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
