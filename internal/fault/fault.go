// internal/fault/fault.go
package fault

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State tracks a fault through the dispatcher's lifecycle.
type State string

const (
	StateNew              State = "new"
	StateAttempting       State = "attempting"
	StateResolved         State = "resolved"
	StateDegradedResolved State = "degraded_resolved"
	StateEscalating       State = "escalating"
	StateFatal            State = "fatal"
)

// ErrFinalized is returned by state mutators once a fault has reached a
// terminal state. Transitions are irreversible.
var ErrFinalized = errors.New("fault already finalized")

// Resolution records how a fault was handled.
type Resolution struct {
	StrategyName string   `json:"strategy_name"`
	Consequences []string `json:"consequences,omitempty"`
	Degraded     bool     `json:"degraded"`
	Notes        string   `json:"notes,omitempty"`
}

// Fault is a single reported failure. The identity and classification fields
// are set at construction and never change; the lifecycle fields transition
// exactly once from unset to set and are guarded for concurrent readers.
type Fault struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Category      Category
	Severity      Severity
	Message       string
	Context       map[string]any
	EscalatedFrom uuid.UUID // uuid.Nil unless this fault was raised by an escalation

	mu         sync.Mutex
	state      State
	attempt    int
	resolution *Resolution
}

// New builds a fault in StateNew. The context map is copied so that later
// mutation by the caller cannot reach the history record.
func New(category Category, severity Severity, message string, ctx map[string]any) *Fault {
	return &Fault{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Category:  category,
		Severity:  severity,
		Message:   message,
		Context:   cloneContext(ctx),
		state:     StateNew,
	}
}

// NewEscalated builds the successor fault for an escalation, linked back to
// the fault it was raised from. Category carries over; severity is the
// caller's already-raised level.
func NewEscalated(from *Fault, severity Severity, message string, ctx map[string]any) *Fault {
	f := New(from.Category, severity, message, ctx)
	f.EscalatedFrom = from.ID
	return f
}

// State returns the current lifecycle state.
func (f *Fault) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Attempt returns the index of the most recent recovery attempt, 1-based,
// or 0 if no strategy has been attempted.
func (f *Fault) Attempt() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempt
}

// Handled reports whether the fault reached a resolved state. Escalated and
// fatal faults are not handled.
func (f *Fault) Handled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handledLocked()
}

func (f *Fault) handledLocked() bool {
	return f.state == StateResolved || f.state == StateDegradedResolved
}

// Resolution returns the recorded resolution, if any.
func (f *Fault) Resolution() (Resolution, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolution == nil {
		return Resolution{}, false
	}
	return *f.resolution, true
}

// BeginAttempt marks the fault as undergoing recovery attempt i (1-based).
func (f *Fault) BeginAttempt(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	f.state = StateAttempting
	f.attempt = i
	return nil
}

// Resolve finalizes the fault as fully recovered.
func (f *Fault) Resolve(res Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	res.Degraded = false
	f.state = StateResolved
	f.resolution = &res
	return nil
}

// ResolveDegraded finalizes the fault as contained by a last-resort handler
// rather than cleanly recovered.
func (f *Fault) ResolveDegraded(res Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	res.Degraded = true
	f.state = StateDegradedResolved
	f.resolution = &res
	return nil
}

// MarkEscalating finalizes the fault as superseded by an escalated fault at
// the next severity.
func (f *Fault) MarkEscalating() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	f.state = StateEscalating
	return nil
}

// MarkFatal finalizes the fault as unrecoverable.
func (f *Fault) MarkFatal() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	f.state = StateFatal
	return nil
}

func (f *Fault) checkOpenLocked() error {
	switch f.state {
	case StateNew, StateAttempting:
		return nil
	default:
		return fmt.Errorf("fault %s in state %s: %w", f.ID, f.state, ErrFinalized)
	}
}

// Record is a point-in-time serializable snapshot of a fault.
type Record struct {
	ID            uuid.UUID      `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	Category      Category       `json:"category"`
	Severity      Severity       `json:"severity"`
	Message       string         `json:"message"`
	Context       map[string]any `json:"context,omitempty"`
	Handled       bool           `json:"handled"`
	Resolution    *Resolution    `json:"resolution,omitempty"`
	State         State          `json:"state"`
	Attempt       int            `json:"attempt,omitempty"`
	EscalatedFrom string         `json:"escalated_from,omitempty"`
}

// Record snapshots the fault for export, sinks and API responses.
func (f *Fault) Record() Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := Record{
		ID:        f.ID,
		CreatedAt: f.CreatedAt,
		Category:  f.Category,
		Severity:  f.Severity,
		Message:   f.Message,
		Context:   cloneContext(f.Context),
		Handled:   f.handledLocked(),
		State:     f.state,
		Attempt:   f.attempt,
	}
	if f.resolution != nil {
		res := *f.resolution
		res.Consequences = append([]string(nil), f.resolution.Consequences...)
		r.Resolution = &res
	}
	if f.EscalatedFrom != uuid.Nil {
		r.EscalatedFrom = f.EscalatedFrom.String()
	}
	return r
}

func cloneContext(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
