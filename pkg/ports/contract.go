package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBackendContract runs a suite of tests to verify that a Backend implementation
// adheres to the defined interface contract.
func RunBackendContract(t *testing.T, backend Backend) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + "-"

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + "roundtrip"
		value := `{"value":{"name":"Maria"},"expiry":1,"createdAt":0}`

		require.NoError(t, backend.Set(ctx, key, value), "Set should not return error")

		got, err := backend.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, value, got)
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		key := prefix + "overwrite"
		require.NoError(t, backend.Set(ctx, key, "first"))
		require.NoError(t, backend.Set(ctx, key, "second"))

		got, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := backend.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		key := prefix + "remove"
		require.NoError(t, backend.Set(ctx, key, "x"))

		require.NoError(t, backend.Remove(ctx, key), "Remove should not return error")

		_, err := backend.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Get after Remove should return ErrNotFound")

		assert.NoError(t, backend.Remove(ctx, key), "Removing a missing key is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		k1 := prefix + "keys-1"
		k2 := prefix + "keys-2"
		require.NoError(t, backend.Set(ctx, k1, "1"))
		require.NoError(t, backend.Set(ctx, k2, "2"))

		defer func() {
			_ = backend.Remove(ctx, k1)
			_ = backend.Remove(ctx, k2)
		}()

		keys, err := backend.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
