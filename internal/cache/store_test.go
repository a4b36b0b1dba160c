package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreHasChangedUnknownPath(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	changed, err := store.HasChanged(context.Background(), "pages/index.html", "abc")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStorePutThenUnchanged(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "pages/index.html", "abc"))

	changed, err := store.HasChanged(ctx, "pages/index.html", "abc")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.HasChanged(ctx, "pages/index.html", "def")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStorePutOverwrites(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.html", "v1"))
	require.NoError(t, store.Put(ctx, "a.html", "v2"))

	changed, err := store.HasChanged(ctx, "a.html", "v2")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStoreForget(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.html", "v1"))
	require.NoError(t, store.Forget(ctx, "a.html"))

	changed, err := store.HasChanged(ctx, "a.html", "v1")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "a.html", "v1"))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	changed, err := store.HasChanged(context.Background(), "a.html", "v1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHashBytesStable(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	c := HashBytes([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
