// Package cache provides injectable TTL key/value stores used to cache
// responses of the remote translation store.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("cache is closed")

// Store is a byte-oriented key/value store with per-item TTL.
type Store interface {
	// Get returns the value and true when key is present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
