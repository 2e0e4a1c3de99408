package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value      []byte
	expiration time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiration.IsZero() && !now.Before(i.expiration)
}

// InMemory is a thread-safe Store kept in process memory. Expired items are
// dropped lazily on access.
type InMemory struct {
	mu     sync.Mutex
	items  map[string]item
	now    func() time.Time
	closed bool
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemory) {
		c.now = now
	}
}

// NewInMemory creates an empty in-memory store.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	c := &InMemory{
		items: make(map[string]item),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false, ErrClosed
	}
	it, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if it.expired(c.now()) {
		delete(c.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (c *InMemory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiration = c.now().Add(ttl)
	}
	c.items[key] = it
	return nil
}

func (c *InMemory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	delete(c.items, key)
	return nil
}

// Close releases the stored items. Further calls fail with ErrClosed.
func (c *InMemory) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.items = nil
	return nil
}
