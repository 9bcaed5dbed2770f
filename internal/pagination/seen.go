// internal/pagination/seen.go
package pagination

import "sync"

// SeenSet holds the dedup keys of every item handed out during a run.
// Drivers only read it; the pipeline marks items as it processes them.
type SeenSet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[string]struct{})}
}

// Has reports whether key was marked
func (s *SeenSet) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Mark adds key and reports whether it was new
func (s *SeenSet) Mark(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of marked keys
func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
