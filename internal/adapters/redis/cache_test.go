package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verleihernix/math-visualizer/internal/adapters/redis"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/ports"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunRenderCacheContract(t, redis.NewFromClient(client))
}

func TestRedisCache_PrefixAndTTL(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()
	c := redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))

	require.NoError(t, c.Set(ctx, "abc", []byte("png"), 0))
	assert.True(t, mr.Exists("test:abc"))
	assert.Equal(t, time.Minute, mr.TTL("test:abc"))

	require.NoError(t, c.Set(ctx, "short", []byte("pdf"), 5*time.Second))
	mr.FastForward(6 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "abc")
	assert.NoError(t, err)
}

func TestRedisCache_New(t *testing.T) {
	mr, _ := setup(t)
	c := redis.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(context.Background()))
}

func TestRedisCache_BackendError(t *testing.T) {
	mr, client := setup(t)
	c := redis.NewFromClient(client)
	mr.Close()

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
}
