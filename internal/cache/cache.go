package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. A miss is reported as
// an empty string with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// noopCache satisfies Cache when no Redis is configured: every read misses
// and writes are discarded.
type noopCache struct{}

// NewNoopCache returns a Cache that never stores anything.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (noopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, key string) error {
	return nil
}
