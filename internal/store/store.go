package store

import (
	"sync"
	"time"

	"github.com/liveresults/liveresults/internal/results"
)

// Entry is a published state together with the time it was published.
type Entry struct {
	State       *results.State
	PublishedAt time.Time
}

// Store holds the most recently published state. States are immutable, so
// the store only serializes replacement of the pointer; readers keep using
// the State they loaded even after a newer one is swapped in.
type Store struct {
	mu    sync.RWMutex
	entry *Entry
	now   func() time.Time // injectable for deterministic tests
}

// New creates an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Load returns the published state, or nil before the first cycle and after
// a Reset.
func (s *Store) Load() *results.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return nil
	}
	return s.entry.State
}

// Get returns the published entry and whether one exists.
func (s *Store) Get() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return Entry{}, false
	}
	return *s.entry, true
}

// Swap publishes st and returns the state it replaced.
// Callers must not modify st after calling Swap.
func (s *Store) Swap(st *results.State) *results.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var old *results.State
	if s.entry != nil {
		old = s.entry.State
	}
	if st == nil {
		s.entry = nil
		return old
	}
	s.entry = &Entry{State: st, PublishedAt: s.now()}
	return old
}

// Reset drops the published state. Joiners receive no replay until the next
// cycle publishes again.
func (s *Store) Reset() {
	s.Swap(nil)
}
