package story

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe, in-memory Store. It is the default when no
// storage module is configured, and the test double for the orchestrator.
type MemoryStore struct {
	mu    sync.RWMutex
	parts map[string][]Part
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{parts: make(map[string][]Part)}
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// LastPart returns a copy of the most recent part, or (nil, nil) when the
// lineage has none.
func (s *MemoryStore) LastPart(_ context.Context, id WeavingID) (*Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.parts[id.BaseKey()]
	if len(revs) == 0 {
		return nil, nil
	}
	return revs[len(revs)-1].Clone(), nil
}

// SavePart stores a copy of part as a new revision (increment) or replaces
// the latest revision in place.
func (s *MemoryStore) SavePart(_ context.Context, id WeavingID, part Part, increment bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.BaseKey()
	cp := *part.Clone()
	revs := s.parts[key]
	if increment || len(revs) == 0 {
		s.parts[key] = append(revs, cp)
		return nil
	}
	revs[len(revs)-1] = cp
	return nil
}

// Revisions returns the number of stored revisions for the lineage.
func (s *MemoryStore) Revisions(id WeavingID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.parts[id.BaseKey()])
}
