package history

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	records []fault.Record
	err     error
}

func (s *fakeSink) Record(_ context.Context, rec fault.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeSink) all() []fault.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fault.Record(nil), s.records...)
}

func TestLog_Append(t *testing.T) {
	t.Run("faults are visible immediately", func(t *testing.T) {
		l := NewLog()
		f := fault.New(fault.CategoryContainmentBreach, fault.SeverityHigh, "breach", nil)

		l.Append(context.Background(), f)

		assert.Equal(t, 1, l.Len())
		got, ok := l.Get(f.ID)
		require.True(t, ok)
		assert.Same(t, f, got)
	})

	t.Run("records survive in insertion order", func(t *testing.T) {
		l := NewLog()
		first := fault.New(fault.CategorySpatialAnomaly, fault.SeverityLow, "first", nil)
		second := fault.New(fault.CategorySpatialAnomaly, fault.SeverityLow, "second", nil)
		l.Append(context.Background(), first)
		l.Append(context.Background(), second)

		all := l.All()
		require.Len(t, all, 2)
		assert.Equal(t, "first", all[0].Message)
		assert.Equal(t, "second", all[1].Message)
	})
}

func TestLog_Recent(t *testing.T) {
	t.Run("returns most recent first up to the limit", func(t *testing.T) {
		l := NewLog()
		for _, msg := range []string{"one", "two", "three"} {
			l.Append(context.Background(), fault.New(fault.CategoryEnergyOverload, fault.SeverityLow, msg, nil))
		}

		recent := l.Recent(2)
		require.Len(t, recent, 2)
		assert.Equal(t, "three", recent[0].Message)
		assert.Equal(t, "two", recent[1].Message)
	})

	t.Run("non-positive limit returns everything", func(t *testing.T) {
		l := NewLog()
		l.Append(context.Background(), fault.New(fault.CategoryEnergyOverload, fault.SeverityLow, "only", nil))
		assert.Len(t, l.Recent(0), 1)
		assert.Len(t, l.Recent(-1), 1)
	})

	t.Run("limit beyond length is harmless", func(t *testing.T) {
		l := NewLog()
		l.Append(context.Background(), fault.New(fault.CategoryEnergyOverload, fault.SeverityLow, "only", nil))
		assert.Len(t, l.Recent(10), 1)
	})
}

func TestLog_Active(t *testing.T) {
	t.Run("keeps exactly the unhandled faults", func(t *testing.T) {
		l := NewLog()
		ctx := context.Background()

		resolved := fault.New(fault.CategoryContainmentBreach, fault.SeverityHigh, "resolved", nil)
		l.Append(ctx, resolved)
		require.NoError(t, resolved.Resolve(fault.Resolution{StrategyName: "EmergencySealing"}))

		degraded := fault.New(fault.CategoryCascadeFailure, fault.SeverityCritical, "degraded", nil)
		l.Append(ctx, degraded)
		require.NoError(t, degraded.ResolveDegraded(fault.Resolution{StrategyName: "LastResort"}))

		escalating := fault.New(fault.CategoryTemporalParadox, fault.SeverityHigh, "escalating", nil)
		l.Append(ctx, escalating)
		require.NoError(t, escalating.MarkEscalating())

		fatal := fault.New(fault.CategoryTemporalParadox, fault.SeverityCatastrophic, "fatal", nil)
		l.Append(ctx, fatal)
		require.NoError(t, fatal.MarkFatal())

		active := l.Active()
		require.Len(t, active, 2)
		assert.Equal(t, "escalating", active[0].Message)
		assert.Equal(t, "fatal", active[1].Message)
	})

	t.Run("empty once every fault is handled", func(t *testing.T) {
		l := NewLog()
		f := fault.New(fault.CategoryEnergyBacklash, fault.SeverityLow, "done", nil)
		l.Append(context.Background(), f)
		require.NoError(t, f.Resolve(fault.Resolution{StrategyName: "GroundingRod"}))

		assert.Empty(t, l.Active())
	})
}

func TestLog_Sink(t *testing.T) {
	t.Run("append and sync both deliver the current record", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLog(WithSink(sink))
		ctx := context.Background()

		f := fault.New(fault.CategoryContainmentBreach, fault.SeverityHigh, "breach", nil)
		l.Append(ctx, f)
		require.NoError(t, f.Resolve(fault.Resolution{StrategyName: "EmergencySealing"}))
		l.Sync(ctx, f)

		records := sink.all()
		require.Len(t, records, 2)
		assert.Equal(t, fault.StateNew, records[0].State)
		assert.Equal(t, fault.StateResolved, records[1].State)
		assert.True(t, records[1].Handled)
	})

	t.Run("sink failures never fail the fault path", func(t *testing.T) {
		sink := &fakeSink{err: errors.New("database offline")}
		l := NewLog(WithSink(sink))

		f := fault.New(fault.CategoryContainmentBreach, fault.SeverityHigh, "breach", nil)
		l.Append(context.Background(), f)

		assert.Equal(t, 1, l.Len())
	})
}

func TestLog_ConcurrentAppends(t *testing.T) {
	t.Run("no appends are lost", func(t *testing.T) {
		l := NewLog()
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.Append(context.Background(), fault.New(fault.CategoryFeedbackLoop, fault.SeverityLow, "burst", nil))
			}()
		}
		wg.Wait()
		assert.Equal(t, 32, l.Len())
	})
}
