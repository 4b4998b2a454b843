package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verleihernix/math-visualizer/pkg/domain"
)

// RunRenderCacheContract runs a suite of tests to verify that a RenderCache
// implementation adheres to the defined interface contract.
func RunRenderCacheContract(t *testing.T, cache RenderCache) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Set and Get", func(t *testing.T) {
		payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

		err := cache.Set(ctx, key, payload, 0)
		require.NoError(t, err, "Set should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, payload, got)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, []byte("first"), time.Minute))
		require.NoError(t, cache.Set(ctx, key, []byte("second"), time.Minute))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("Stored Bytes Are Isolated", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, cache.Set(ctx, key+"-iso", buf, 0))
		buf[0] = 'z'

		got, err := cache.Get(ctx, key+"-iso")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})
}
