package session

import "sync"

// Store is an append-only, session-scoped collection of entries. Insertion
// order is preserved; retrieval is most-recent-first. Duplicates are
// permitted; entries have no identity beyond their position.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Append adds an entry to the store. It always succeeds.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// ListReverse returns the entries most-recent-first. The returned slice is a
// snapshot: iterating it is safe while the store mutates.
func (s *Store) ListReverse() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Get returns the entry at position index of the most-recent-first order.
func (s *Store) Get(index int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1-index], true
}

// Clear removes all entries. Irreversible.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
