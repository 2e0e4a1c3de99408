// Package redis provides a cache.Store backed by Redis, so that cached
// remote responses can be shared between CLI runs and CI workers.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/better-i18n/i18n-sync/cache"
)

// Options contains configuration for the Redis store.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store is a Redis-backed cache.Store.
type Store struct {
	client *redis.Client
	prefix string
}

var _ cache.Store = (*Store)(nil)

// New connects to Redis and verifies the connection with a PING.
// Addr may be host:port or a redis:// or rediss:// URL.
func New(ctx context.Context, opts Options) (*Store, error) {
	clientOpts, err := opts.clientOptions()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(clientOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewFromClient(client, opts.KeyPrefix), nil
}

// clientOptions maps Options to go-redis options. Credentials and database
// from a URL address apply unless Password or DB are set explicitly.
func (o Options) clientOptions() (*redis.Options, error) {
	if !strings.HasPrefix(o.Addr, "redis://") && !strings.HasPrefix(o.Addr, "rediss://") {
		return &redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB}, nil
	}
	opts, err := redis.ParseURL(o.Addr)
	if err != nil {
		return nil, fmt.Errorf("parsing redis address: %w", err)
	}
	if o.Password != "" {
		opts.Password = o.Password
	}
	if o.DB != 0 {
		opts.DB = o.DB
	}
	return opts, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		if errors.Is(err, redis.ErrClosed) {
			return nil, false, cache.ErrClosed
		}
		return nil, false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
