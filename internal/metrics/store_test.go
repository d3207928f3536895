package metrics

import (
	"sync"
	"testing"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Recording(t *testing.T) {
	t.Run("tracks attempts, outcomes and usage per category", func(t *testing.T) {
		s := NewStore()
		s.RecordAttempt(fault.CategoryContainmentBreach)
		s.RecordFailure(fault.CategoryContainmentBreach)
		s.RecordAttempt(fault.CategoryContainmentBreach)
		s.RecordSuccess(fault.CategoryContainmentBreach, ledger.Cost{"sealing_stones": 4})

		snap := s.Snapshot()
		m := snap[fault.CategoryContainmentBreach]
		assert.Equal(t, int64(2), m.Attempts)
		assert.Equal(t, int64(1), m.Successes)
		assert.Equal(t, int64(1), m.Failures)
		assert.Equal(t, int64(4), m.ResourceUsage["sealing_stones"])

		// Other categories stay untouched but present.
		other, ok := snap[fault.CategoryCascadeFailure]
		require.True(t, ok)
		assert.Zero(t, other.Attempts)
	})

	t.Run("usage accumulates across successes", func(t *testing.T) {
		s := NewStore()
		s.RecordSuccess(fault.CategoryEnergyOverload, ledger.Cost{"vent_seals": 1})
		s.RecordSuccess(fault.CategoryEnergyOverload, ledger.Cost{"vent_seals": 1, "mana_reserve": 3})

		m := s.Snapshot()[fault.CategoryEnergyOverload]
		assert.Equal(t, int64(2), m.ResourceUsage["vent_seals"])
		assert.Equal(t, int64(3), m.ResourceUsage["mana_reserve"])
	})

	t.Run("snapshot covers every known category", func(t *testing.T) {
		snap := NewStore().Snapshot()
		assert.Len(t, snap, len(fault.Categories()))
	})
}

func TestStore_SnapshotIsolation(t *testing.T) {
	t.Run("mutating a snapshot does not touch the store", func(t *testing.T) {
		s := NewStore()
		s.RecordSuccess(fault.CategorySpatialAnomaly, ledger.Cost{"anchor_stones": 2})

		snap := s.Snapshot()
		snap[fault.CategorySpatialAnomaly].ResourceUsage["anchor_stones"] = 999

		again := s.Snapshot()
		assert.Equal(t, int64(2), again[fault.CategorySpatialAnomaly].ResourceUsage["anchor_stones"])
	})
}

func TestStore_Consistency(t *testing.T) {
	t.Run("outcomes never exceed attempts under concurrency", func(t *testing.T) {
		s := NewStore()
		category := fault.CategoryFeedbackLoop

		// Writers follow the dispatcher's discipline: attempt first, then
		// exactly one outcome.
		var writers sync.WaitGroup
		for i := 0; i < 8; i++ {
			writers.Add(1)
			go func(i int) {
				defer writers.Done()
				for j := 0; j < 200; j++ {
					s.RecordAttempt(category)
					if (i+j)%2 == 0 {
						s.RecordSuccess(category, ledger.Cost{"mana": 1})
					} else {
						s.RecordFailure(category)
					}
				}
			}(i)
		}

		// Reader races snapshots against the writers.
		stop := make(chan struct{})
		readerDone := make(chan struct{})
		go func() {
			defer close(readerDone)
			for {
				select {
				case <-stop:
					return
				default:
				}
				m := s.Snapshot()[category]
				assert.LessOrEqual(t, m.Successes+m.Failures, m.Attempts)
			}
		}()

		writers.Wait()
		close(stop)
		<-readerDone

		m := s.Snapshot()[category]
		assert.Equal(t, int64(1600), m.Attempts)
		assert.Equal(t, m.Attempts, m.Successes+m.Failures)
		assert.Equal(t, int64(800), m.ResourceUsage["mana"])
	})
}

func TestStore_Storms(t *testing.T) {
	t.Run("counts storm detections", func(t *testing.T) {
		s := NewStore()
		s.RecordStorm(fault.CategoryEnvironmentalStorm)
		s.RecordStorm(fault.CategoryEnvironmentalStorm)

		assert.Equal(t, int64(2), s.Storms()[fault.CategoryEnvironmentalStorm])
	})
}
