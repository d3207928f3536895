// internal/ledger/memory.go
package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an in-process Gate backed by a balance map. It is the
// default for tests, demos and embedders that manage resources themselves.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	effects  []string
}

// NewMemoryLedger creates an empty ledger. Seed it with Deposit.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

// Deposit adds quantity of a resource to the pool.
func (l *MemoryLedger) Deposit(resource string, quantity int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[resource] += quantity
}

// Balance returns the current quantity of a resource.
func (l *MemoryLedger) Balance(resource string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[resource]
}

// HasResources reports whether every resource in cost is currently covered.
func (l *MemoryLedger) HasResources(_ context.Context, cost Cost) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coveredLocked(cost)
}

// Consume debits the full cost or nothing. Checking and debiting happen under
// one lock, so two concurrent consumers can never both succeed on the same
// last units.
func (l *MemoryLedger) Consume(_ context.Context, cost Cost) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.coveredLocked(cost) {
		return fmt.Errorf("memory ledger: %w", ErrInsufficientResources)
	}
	for resource, qty := range cost {
		l.balances[resource] -= qty
	}
	return nil
}

// ApplySideEffects journals the effects. The journal stands in for whatever
// world mutation a real embedder performs.
func (l *MemoryLedger) ApplySideEffects(_ context.Context, effects []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.effects = append(l.effects, effects...)
	return nil
}

// SideEffects returns a copy of the applied side effect journal.
func (l *MemoryLedger) SideEffects() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.effects...)
}

func (l *MemoryLedger) coveredLocked(cost Cost) bool {
	for resource, qty := range cost {
		if l.balances[resource] < qty {
			return false
		}
	}
	return true
}
