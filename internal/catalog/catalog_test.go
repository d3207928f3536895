package catalog

import (
	"testing"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainsWith returns the default table with one category's chain replaced.
func chainsWith(category fault.Category, chain []Strategy) map[fault.Category][]Strategy {
	chains := defaultChains()
	chains[category] = chain
	return chains
}

func TestNew(t *testing.T) {
	t.Run("accepts the default table", func(t *testing.T) {
		c, err := New(defaultChains())
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("rejects a missing category", func(t *testing.T) {
		chains := defaultChains()
		delete(chains, fault.CategoryAwarenessBleed)
		_, err := New(chains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "awareness_bleed")
	})

	t.Run("rejects an empty chain", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategoryFeedbackLoop, nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no strategies")
	})

	t.Run("rejects an unknown category key", func(t *testing.T) {
		chains := defaultChains()
		chains[fault.Category("chaos_surge")] = []Strategy{{Name: "X", SuccessProbability: 0.5}}
		_, err := New(chains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chaos_surge")
	})

	t.Run("rejects probabilities out of range", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategorySpatialAnomaly, []Strategy{
			{Name: "Overconfident", SuccessProbability: 1.2},
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of [0,1]")
	})

	t.Run("rejects negative costs", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategorySpatialAnomaly, []Strategy{
			{Name: "Refund", SuccessProbability: 0.5, Cost: ledger.Cost{"mana": -1}},
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("rejects duplicate strategy names in a chain", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategorySpatialAnomaly, []Strategy{
			{Name: "Anchor", SuccessProbability: 0.5},
			{Name: "Anchor", SuccessProbability: 0.9},
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positions 1 and 2")
	})

	t.Run("rejects a fallback that points backwards", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategorySpatialAnomaly, []Strategy{
			{Name: "First", SuccessProbability: 0.5},
			{Name: "Second", SuccessProbability: 0.6, Fallback: "First"},
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not come later")
	})

	t.Run("rejects a fallback to a strategy that does not exist", func(t *testing.T) {
		_, err := New(chainsWith(fault.CategorySpatialAnomaly, []Strategy{
			{Name: "First", SuccessProbability: 0.5, Fallback: "Ghost"},
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Ghost")
	})
}

func TestStrategiesFor(t *testing.T) {
	t.Run("preserves authored order", func(t *testing.T) {
		c := Default()
		chain, err := c.StrategiesFor(fault.CategoryContainmentBreach)
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, "BarrierReinforcement", chain[0].Name)
		assert.Equal(t, "EmergencySealing", chain[1].Name)
	})

	t.Run("errors on unknown categories", func(t *testing.T) {
		c := Default()
		_, err := c.StrategiesFor(fault.Category("chaos_surge"))
		assert.Error(t, err)
	})

	t.Run("returned chain is isolated from the catalog", func(t *testing.T) {
		c := Default()
		chain, err := c.StrategiesFor(fault.CategoryContainmentBreach)
		require.NoError(t, err)

		chain[0].Name = "Tampered"
		chain[0].Cost["barrier_crystals"] = 999

		again, err := c.StrategiesFor(fault.CategoryContainmentBreach)
		require.NoError(t, err)
		assert.Equal(t, "BarrierReinforcement", again[0].Name)
		assert.Equal(t, int64(2), again[0].Cost["barrier_crystals"])
	})
}
