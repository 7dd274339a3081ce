package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := store.Get("token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set("token", "abc"))
		value, ok, err := store.Get("token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set("token", "def"))
		value, _, err := store.Get("token")
		require.NoError(t, err)
		assert.Equal(t, "def", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("token"))
		_, ok, err := store.Get("token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete absent key is fine", func(t *testing.T) {
		assert.NoError(t, store.Delete("never-there"))
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("likedThoughts", `["a","b"]`))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("likedThoughts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["a","b"]`, value)
}
