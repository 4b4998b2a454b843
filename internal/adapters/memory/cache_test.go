package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verleihernix/math-visualizer/internal/adapters/memory"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/ports"
)

func TestMemoryCache_Contract(t *testing.T) {
	ports.RunRenderCacheContract(t, memory.New())
}

func TestMemoryCache_EvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithMaxEntries(2))

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}, 0))
	}

	_, err := c.Get(ctx, "k0")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	got, err := c.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_OverwriteRefreshesPosition(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithMaxEntries(2))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "a", []byte("3"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("4"), 0))

	_, err := c.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := memory.New(
		memory.WithTTL(time.Minute),
		memory.WithClock(func() time.Time { return now }),
	)

	require.NoError(t, c.Set(ctx, "default", []byte("x"), 0))
	require.NoError(t, c.Set(ctx, "short", []byte("y"), time.Second))

	now = now.Add(2 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "default")
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Zero(t, c.Len())
}
