package session

import "sync"

// MemoryStore is the storage-less fallback and the test double.
type MemoryStore struct {
	mu  sync.RWMutex
	sel map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sel: make(map[string]string)}
}

func (s *MemoryStore) Get(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	farmID, ok := s.sel[userID]
	return farmID, ok && farmID != ""
}

func (s *MemoryStore) Set(userID, farmID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel[userID] = farmID
}

func (s *MemoryStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sel, userID)
}
