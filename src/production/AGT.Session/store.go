// Package session holds the per-user "current farm" pointer. The
// pointer is an advisory cache: it is never trusted without
// re-validation against the farm directory, and a store that cannot be
// reached behaves as a cache miss rather than an error.
package session

// Store is the injectable farm-selection cache.
type Store interface {
	// Get returns the cached farm id for a user. ok is false on a miss,
	// including any storage failure.
	Get(userID string) (farmID string, ok bool)
	// Set records the selection. Last write wins.
	Set(userID, farmID string)
	// Clear drops the selection.
	Clear(userID string)
}
