package tui

import "sync"

// Surface holds the answer currently composed in the input widgets. The
// engine reads it from timer goroutines, so access is mutex guarded.
type Surface struct {
	mu    sync.Mutex
	value int
	has   bool
}

// Set records v as the current candidate.
func (s *Surface) Set(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.has = true
}

// Unset discards the current candidate.
func (s *Surface) Unset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = 0
	s.has = false
}

// Candidate returns the composed answer, if any.
func (s *Surface) Candidate() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}

// Clear is called by the engine after a correct resolution.
func (s *Surface) Clear() {
	s.Unset()
}
