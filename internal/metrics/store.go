// internal/metrics/store.go
package metrics

import (
	"sync"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
)

// HandlerMetrics aggregates recovery outcomes for one fault category.
type HandlerMetrics struct {
	Attempts      int64            `json:"attempts"`
	Successes     int64            `json:"successes"`
	Failures      int64            `json:"failures"`
	ResourceUsage map[string]int64 `json:"resource_usage,omitempty"`
}

// Store keeps per-category handler metrics. All updates are atomic under one
// lock; the dispatcher records an attempt before it records the outcome, so a
// snapshot can observe attempts ahead of outcomes but never successes plus
// failures above attempts.
type Store struct {
	mu      sync.RWMutex
	entries map[fault.Category]*HandlerMetrics
	storms  map[fault.Category]int64
}

// NewStore creates a store with a zeroed entry per known category.
func NewStore() *Store {
	s := &Store{
		entries: make(map[fault.Category]*HandlerMetrics),
		storms:  make(map[fault.Category]int64),
	}
	for _, category := range fault.Categories() {
		s.entries[category] = &HandlerMetrics{ResourceUsage: make(map[string]int64)}
	}
	return s
}

func (s *Store) entry(category fault.Category) *HandlerMetrics {
	m, ok := s.entries[category]
	if !ok {
		m = &HandlerMetrics{ResourceUsage: make(map[string]int64)}
		s.entries[category] = m
	}
	return m
}

// RecordAttempt counts one strategy attempt for the category.
func (s *Store) RecordAttempt(category fault.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(category).Attempts++
}

// RecordSuccess counts one successful recovery and accumulates the resources
// it consumed.
func (s *Store) RecordSuccess(category fault.Category, consumed ledger.Cost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.entry(category)
	m.Successes++
	for resource, qty := range consumed {
		m.ResourceUsage[resource] += qty
	}
}

// RecordFailure counts one failed strategy attempt.
func (s *Store) RecordFailure(category fault.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(category).Failures++
}

// RecordStorm counts one storm detection event for the category.
func (s *Store) RecordStorm(category fault.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storms[category]++
}

// Snapshot returns a deep copy of every category's metrics, including
// categories that have recorded nothing yet.
func (s *Store) Snapshot() map[fault.Category]HandlerMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[fault.Category]HandlerMetrics, len(s.entries))
	for category, m := range s.entries {
		copied := HandlerMetrics{
			Attempts:      m.Attempts,
			Successes:     m.Successes,
			Failures:      m.Failures,
			ResourceUsage: make(map[string]int64, len(m.ResourceUsage)),
		}
		for resource, qty := range m.ResourceUsage {
			copied.ResourceUsage[resource] = qty
		}
		out[category] = copied
	}
	return out
}

// Storms returns a copy of the per-category storm counters.
func (s *Store) Storms() map[fault.Category]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[fault.Category]int64, len(s.storms))
	for category, n := range s.storms {
		out[category] = n
	}
	return out
}
