// internal/ledger/ledger.go
package ledger

import (
	"context"
	"errors"
)

// Cost maps resource identifiers to the quantity a recovery strategy consumes.
type Cost map[string]int64

// Clone returns an independent copy of the cost map.
func (c Cost) Clone() Cost {
	if c == nil {
		return nil
	}
	out := make(Cost, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Empty reports whether the cost demands no resources.
func (c Cost) Empty() bool {
	for _, qty := range c {
		if qty > 0 {
			return false
		}
	}
	return true
}

// ErrInsufficientResources is returned by Consume when any required resource
// cannot be debited in full.
var ErrInsufficientResources = errors.New("insufficient resources")

// Gate answers whether the world can pay for a recovery strategy and applies
// its costs and side effects. The dispatcher is the only caller; embedding
// applications supply the implementation, or use one of the ledgers in this
// package.
type Gate interface {
	// HasResources is a read-only availability check. The dispatcher uses it
	// to skip unaffordable strategies without counting an attempt; Consume
	// stays the authoritative admission decision.
	HasResources(ctx context.Context, cost Cost) bool

	// Consume debits every resource in cost atomically: either all debits
	// apply or none do. Returns ErrInsufficientResources (possibly wrapped)
	// when the debit cannot be made in full.
	Consume(ctx context.Context, cost Cost) error

	// ApplySideEffects applies a strategy's world-visible side effects.
	// Best effort: a failure is reported to the caller but never undoes a
	// consume that already happened.
	ApplySideEffects(ctx context.Context, effects []string) error
}
