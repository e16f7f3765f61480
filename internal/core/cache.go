package core

import (
	"context"
	"time"
)

// CacheRepository defines a byte-oriented cache used to serve hot job reads.
// A nil result with a nil error indicates a cache miss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) (bool, error)
}
