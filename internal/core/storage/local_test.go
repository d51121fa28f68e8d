package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save([]byte("hello"), "invoice.png")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(path))
	_, err = store.Load(path)
	assert.Error(t, err)
}

func TestLocalStoreUniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save([]byte("a"), "doc.pdf")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "doc.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStoreDeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(filepath.Join(t.TempDir(), "ghost.png")))
}
