// Package riskengine exposes the advisor-facing surface of the external
// quantitative risk engine. The engine itself lives elsewhere; the advisor
// only reads its most recently published result.
package riskengine

import "sync"

// Slot is a process-wide single-slot holding the last published
// risk-assessment result. Last write wins; readers must not mutate the
// returned mapping.
type Slot struct {
	mu    sync.RWMutex
	value map[string]any
}

// NewSlot creates an empty result slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish replaces the slot contents with the given assessment result.
func (s *Slot) Publish(result map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = result
}

// Latest returns the most recently published result, or nil when nothing
// has been published yet.
func (s *Slot) Latest() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// HasResult reports whether an assessment has been published.
func (s *Slot) HasResult() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.value) > 0
}

// Clear empties the slot. Intended for tests.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = nil
}
