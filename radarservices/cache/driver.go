package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache entry not found")

// Driver keeps encoded statement entries until their ttl runs out.
type Driver interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, entry []byte, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
	// Purge forgets every entry whose key starts with prefix.
	Purge(ctx context.Context, prefix string) error
}
