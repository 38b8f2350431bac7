package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get("u-1")
	assert.False(t, ok, "expected miss before any Set")

	store.Set("u-1", "farm-a")
	farmID, ok := store.Get("u-1")
	assert.True(t, ok)
	assert.Equal(t, "farm-a", farmID)

	// Last write wins.
	store.Set("u-1", "farm-b")
	farmID, _ = store.Get("u-1")
	assert.Equal(t, "farm-b", farmID)

	// Selections are per user.
	_, ok = store.Get("u-2")
	assert.False(t, ok)

	store.Clear("u-1")
	_, ok = store.Get("u-1")
	assert.False(t, ok, "expected miss after Clear")
}

func TestMemoryStoreMatchesContract(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("u-1")
	assert.False(t, ok)

	store.Set("u-1", "farm-a")
	farmID, ok := store.Get("u-1")
	assert.True(t, ok)
	assert.Equal(t, "farm-a", farmID)

	store.Clear("u-1")
	_, ok = store.Get("u-1")
	assert.False(t, ok)
}
