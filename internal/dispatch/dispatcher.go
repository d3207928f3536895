// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FairForge/wardkeeper/internal/catalog"
	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/history"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/FairForge/wardkeeper/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys the dispatcher writes into escalated faults. Caller-supplied
// contexts may not use them.
const (
	ContextKeyEscalatedFrom = "escalated_from"
	ContextKeyReason        = "reason"
)

// ErrFatal wraps the one error the framework surfaces to callers: a fault at
// catastrophic severity whose handling failed.
var ErrFatal = errors.New("fault reached fatal state")

// Dispatcher drives every reported fault to a terminal state: resolved by a
// catalog strategy, contained by a last-resort handler, or escalated through
// the severity ladder until it resolves or turns fatal at the ceiling.
//
// Dispatchers hold no locks of their own; the catalog is immutable and the
// metrics store, history and gate each guard their own state. That keeps the
// escalation path lock-free and Report safe for concurrent call sites.
type Dispatcher struct {
	catalog     *catalog.Catalog
	gate        ledger.Gate
	metrics     *metrics.Store
	history     *history.Log
	lastResorts map[fault.Category]LastResortFunc
	rand        Rand
	gateTimeout time.Duration
	storm       *stormDetector
	logger      *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithRand replaces the random source. Tests inject deterministic draws.
func WithRand(r Rand) Option {
	return func(d *Dispatcher) { d.rand = r }
}

// WithGateTimeout bounds each resource gate call. A gate that exceeds it is
// treated as lacking resources, never as a hang.
func WithGateTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.gateTimeout = d }
}

// WithLastResort registers a category-specific last-resort handler.
// Categories without one fall back to generic full containment.
func WithLastResort(category fault.Category, fn LastResortFunc) Option {
	return func(d *Dispatcher) { d.lastResorts[category] = fn }
}

// WithStormThreshold enables fault-storm detection at the given sustained
// per-category report rate.
func WithStormThreshold(perSecond float64, burst int) Option {
	return func(d *Dispatcher) { d.storm = newStormDetector(perSecond, burst) }
}

// New creates a dispatcher over the given catalog, resource gate, metrics
// store and history log.
func New(cat *catalog.Catalog, gate ledger.Gate, store *metrics.Store, log *history.Log, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:     cat,
		gate:        gate,
		metrics:     store,
		history:     log,
		lastResorts: make(map[fault.Category]LastResortFunc),
		rand:        newLockedRand(),
		gateTimeout: 2 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Report records a fault and drives it to a terminal state before returning.
// The returned id names the fault that reached the terminal state; when
// handling escalated, that is the last fault of the escalation chain, and
// its context links back to its predecessors. The error return is non-nil
// only for the fatal case.
func (d *Dispatcher) Report(ctx context.Context, category fault.Category, severity fault.Severity, message string, faultCtx map[string]any) (uuid.UUID, error) {
	if !category.Valid() {
		return uuid.Nil, fmt.Errorf("dispatch: unknown category %q", category)
	}
	if !severity.Valid() {
		return uuid.Nil, fmt.Errorf("dispatch: invalid severity %d", int(severity))
	}

	return d.process(ctx, fault.New(category, severity, message, faultCtx))
}

// process runs one fault through the state machine. Escalation re-enters it
// with the successor fault; the severity ladder bounds that recursion.
func (d *Dispatcher) process(ctx context.Context, f *fault.Fault) (uuid.UUID, error) {
	d.noteStorm(f.Category)
	d.history.Append(ctx, f)

	if err := d.resolve(ctx, f); err != nil {
		return d.escalate(ctx, f, err)
	}

	d.history.Sync(ctx, f)
	return f.ID, nil
}

// resolve walks the strategy chain and finishes with the last resort if the
// chain does not produce a resolution. A non-nil return is a framework
// internal error, not a strategy failure; panics are folded into it.
func (d *Dispatcher) resolve(ctx context.Context, f *fault.Fault) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()

	if err := d.validateContext(f); err != nil {
		return err
	}

	chain, err := d.catalog.StrategiesFor(f.Category)
	if err != nil {
		return fmt.Errorf("strategy lookup: %w", err)
	}

	for i, strategy := range chain {
		if err := f.BeginAttempt(i + 1); err != nil {
			return fmt.Errorf("begin attempt %d: %w", i+1, err)
		}

		if !d.hasResources(ctx, strategy.Cost) {
			d.logger.Debug("strategy skipped, resources unavailable",
				zap.String("fault_id", f.ID.String()),
				zap.String("strategy", strategy.Name))
			continue
		}

		d.metrics.RecordAttempt(f.Category)

		if d.rand.Float64() >= strategy.SuccessProbability {
			d.metrics.RecordFailure(f.Category)
			d.logger.Debug("strategy failed",
				zap.String("fault_id", f.ID.String()),
				zap.String("strategy", strategy.Name))
			continue
		}

		if err := d.consume(ctx, strategy.Cost); err != nil {
			// Lost the pool to a concurrent fault between the availability
			// check and the debit. Counts as a failed attempt.
			d.metrics.RecordFailure(f.Category)
			d.logger.Warn("resource consumption failed after successful draw",
				zap.String("fault_id", f.ID.String()),
				zap.String("strategy", strategy.Name),
				zap.Error(err))
			continue
		}

		if err := d.applySideEffects(ctx, strategy.SideEffects); err != nil {
			d.logger.Warn("side effects incompletely applied",
				zap.String("fault_id", f.ID.String()),
				zap.String("strategy", strategy.Name),
				zap.Error(err))
		}

		d.metrics.RecordSuccess(f.Category, strategy.Cost)
		if err := f.Resolve(fault.Resolution{
			StrategyName: strategy.Name,
			Consequences: strategy.SideEffects,
		}); err != nil {
			return fmt.Errorf("finalize resolution: %w", err)
		}

		d.logger.Info("fault resolved",
			zap.String("fault_id", f.ID.String()),
			zap.String("category", f.Category.String()),
			zap.String("severity", f.Severity.String()),
			zap.String("strategy", strategy.Name))
		return nil
	}

	// Chain exhausted, or authored empty. The last resort is total: the
	// fault is contained, degraded, never dropped.
	res := d.lastResortFor(f.Category)(f.Category, f.Severity, f.Context)
	if err := f.ResolveDegraded(res); err != nil {
		return fmt.Errorf("finalize degraded resolution: %w", err)
	}

	d.logger.Info("fault contained by last resort",
		zap.String("fault_id", f.ID.String()),
		zap.String("category", f.Category.String()),
		zap.String("severity", f.Severity.String()))
	return nil
}

// escalate handles a framework-internal error by re-raising the fault one
// severity higher, or marking it fatal at the ceiling. No locks are held
// here; the recursion into process is bounded by the severity ladder.
func (d *Dispatcher) escalate(ctx context.Context, f *fault.Fault, cause error) (uuid.UUID, error) {
	next, ok := f.Severity.Next()
	if !ok {
		if err := f.MarkFatal(); err != nil {
			d.logger.Error("could not mark fault fatal", zap.String("fault_id", f.ID.String()), zap.Error(err))
		}
		d.history.Sync(ctx, f)
		d.logger.Error("fault is fatal",
			zap.String("fault_id", f.ID.String()),
			zap.String("category", f.Category.String()),
			zap.Error(cause))
		return f.ID, fmt.Errorf("fault %s (%s at %s): %w: %v", f.ID, f.Category, f.Severity, ErrFatal, cause)
	}

	if err := f.MarkEscalating(); err != nil {
		d.logger.Error("could not mark fault escalating", zap.String("fault_id", f.ID.String()), zap.Error(err))
	}
	d.history.Sync(ctx, f)

	escCtx := make(map[string]any, len(f.Context)+2)
	for k, v := range f.Context {
		escCtx[k] = v
	}
	escCtx[ContextKeyEscalatedFrom] = f.ID.String()
	escCtx[ContextKeyReason] = cause.Error()

	esc := fault.NewEscalated(f, next, "Escalated: "+f.Message, escCtx)

	d.logger.Warn("escalating fault",
		zap.String("fault_id", f.ID.String()),
		zap.String("escalated_to", esc.ID.String()),
		zap.String("category", f.Category.String()),
		zap.String("severity", next.String()),
		zap.Error(cause))

	return d.process(ctx, esc)
}

// validateContext rejects caller contexts that use reserved keys. Escalated
// faults carry those keys legitimately and skip the check.
func (d *Dispatcher) validateContext(f *fault.Fault) error {
	if f.EscalatedFrom != uuid.Nil {
		return nil
	}
	for _, key := range []string{ContextKeyEscalatedFrom, ContextKeyReason} {
		if _, ok := f.Context[key]; ok {
			return fmt.Errorf("context key %q is reserved", key)
		}
	}
	return nil
}

func (d *Dispatcher) noteStorm(category fault.Category) {
	if d.storm == nil {
		return
	}
	if !d.storm.Within(category) {
		d.metrics.RecordStorm(category)
		d.logger.Warn("fault storm detected", zap.String("category", category.String()))
	}
}

func (d *Dispatcher) lastResortFor(category fault.Category) LastResortFunc {
	if fn, ok := d.lastResorts[category]; ok {
		return fn
	}
	return genericLastResort
}

// hasResources is the read-only availability check, bounded so a slow gate
// reads as unavailable instead of stalling the chain.
func (d *Dispatcher) hasResources(ctx context.Context, cost ledger.Cost) bool {
	if cost.Empty() {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, d.gateTimeout)
	defer cancel()
	return d.gate.HasResources(ctx, cost)
}

func (d *Dispatcher) consume(ctx context.Context, cost ledger.Cost) error {
	if cost.Empty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.gateTimeout)
	defer cancel()
	return d.gate.Consume(ctx, cost)
}

func (d *Dispatcher) applySideEffects(ctx context.Context, effects []string) error {
	if len(effects) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.gateTimeout)
	defer cancel()
	return d.gate.ApplySideEffects(ctx, effects)
}
