package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore holds the pair in process memory. It is the builder default
// and the store of choice in tests; sessions do not survive restarts.
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
	set  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Pair{}, ErrNotFound
	}
	return s.pair, nil
}

func (s *MemoryStore) Save(_ context.Context, pair Pair) error {
	if !pair.Valid() {
		return errIncomplete
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.set = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.set = false
	return nil
}
