// internal/history/log.go
package history

import (
	"context"
	"sync"
	"time"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink receives fault records for durable audit storage. Record replaces any
// earlier state stored for the same fault id, so it is called once when the
// fault is first appended and again when it reaches a terminal state.
type Sink interface {
	Record(ctx context.Context, record fault.Record) error
}

// Log is the append-only in-memory fault history. Faults are retained for
// the lifetime of the process; bounded reads go through Recent. An optional
// Sink mirrors records to durable storage, best effort: a sink failure is
// logged and never fails the fault path.
type Log struct {
	mu     sync.RWMutex
	faults []*fault.Fault
	byID   map[uuid.UUID]*fault.Fault

	sink        Sink
	sinkTimeout time.Duration
	logger      *zap.Logger
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithSink mirrors appended and finalized records to a durable sink.
func WithSink(sink Sink) LogOption {
	return func(l *Log) { l.sink = sink }
}

// WithSinkTimeout bounds each sink delivery.
func WithSinkTimeout(d time.Duration) LogOption {
	return func(l *Log) { l.sinkTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LogOption {
	return func(l *Log) { l.logger = logger }
}

// NewLog creates an empty history.
func NewLog(opts ...LogOption) *Log {
	l := &Log{
		byID:        make(map[uuid.UUID]*fault.Fault),
		sinkTimeout: 5 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records the fault. The fault is visible to readers before Append
// returns, so a crash later in handling still leaves an audit trail.
func (l *Log) Append(ctx context.Context, f *fault.Fault) {
	l.mu.Lock()
	l.faults = append(l.faults, f)
	l.byID[f.ID] = f
	l.mu.Unlock()

	l.deliver(ctx, f)
}

// Sync pushes the fault's current state to the sink. The dispatcher calls it
// once the fault reaches a terminal state; without a sink it is a no-op.
func (l *Log) Sync(ctx context.Context, f *fault.Fault) {
	l.deliver(ctx, f)
}

func (l *Log) deliver(ctx context.Context, f *fault.Fault) {
	if l.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, l.sinkTimeout)
	defer cancel()
	if err := l.sink.Record(ctx, f.Record()); err != nil {
		l.logger.Warn("audit sink rejected fault record",
			zap.String("fault_id", f.ID.String()),
			zap.Error(err))
	}
}

// Get returns the live fault for an id.
func (l *Log) Get(id uuid.UUID) (*fault.Fault, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.byID[id]
	return f, ok
}

// Len returns the number of recorded faults.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.faults)
}

// Recent returns up to limit records, most recent first. A non-positive
// limit returns everything.
func (l *Log) Recent(limit int) []fault.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.faults)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]fault.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.faults[i].Record())
	}
	return out
}

// All returns every record in insertion order.
func (l *Log) All() []fault.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]fault.Record, 0, len(l.faults))
	for _, f := range l.faults {
		out = append(out, f.Record())
	}
	return out
}

// Active returns records of faults with handled == false. Steady state is
// empty; entries here are escalation chains, fatal faults, or evidence of a
// dispatcher bug.
func (l *Log) Active() []fault.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []fault.Record
	for _, f := range l.faults {
		if rec := f.Record(); !rec.Handled {
			out = append(out, rec)
		}
	}
	return out
}
