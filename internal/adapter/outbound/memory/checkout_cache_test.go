package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutCache(t *testing.T) {
	ctx := context.Background()
	cache := NewCheckoutCache()
	t.Cleanup(cache.Close)

	t.Run("missing key", func(t *testing.T) {
		data, err := cache.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("stored values are copies", func(t *testing.T) {
		value := []byte(`{"email":"a@example.com"}`)
		require.NoError(t, cache.Set(ctx, "k1", value, time.Hour))
		value[0] = 'x'

		data, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"a@example.com"}`, string(data))
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k2", []byte("1"), 50*time.Millisecond))
		require.Eventually(t, func() bool {
			data, err := cache.Get(ctx, "k2")
			return err == nil && data == nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("zero ttl keeps the value", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k3", []byte("1"), 0))
		data, err := cache.Get(ctx, "k3")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), data)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k4", []byte("1"), time.Hour))
		require.NoError(t, cache.Delete(ctx, "k4", "k404"))
		data, err := cache.Get(ctx, "k4")
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}
