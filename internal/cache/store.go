package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by BlobStore.Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// BlobStore is the durable second tier. Implementations must honor the TTL
// given at Set time and report absent or expired keys as ErrNotFound.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
