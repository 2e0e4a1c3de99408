package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemory(WithClock(func() time.Time { return now }))

	_, found, err := c.Get(ctx, "manifest")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "manifest", []byte("v1"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("v2"), 0))

	value, found, err := c.Get(ctx, "manifest")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), value)

	now = now.Add(time.Minute)
	_, found, err = c.Get(ctx, "manifest")
	require.NoError(t, err)
	require.False(t, found, "item must expire at its TTL")

	value, found, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), value)

	require.NoError(t, c.Delete(ctx, "forever"))
	_, found, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	require.False(t, found)
}

func TestInMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	value, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), value)
}

func TestInMemoryClosed(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory()
	require.NoError(t, c.Close())

	_, _, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), ErrClosed)
}
