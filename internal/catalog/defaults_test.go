package catalog

import (
	"testing"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("covers every category with a usable chain", func(t *testing.T) {
		c := Default()
		for _, category := range fault.Categories() {
			chain, err := c.StrategiesFor(category)
			require.NoError(t, err, "category %s", category)
			assert.NotEmpty(t, chain, "category %s", category)
			for _, s := range chain {
				assert.GreaterOrEqual(t, s.SuccessProbability, 0.0)
				assert.LessOrEqual(t, s.SuccessProbability, 1.0)
			}
		}
	})

	t.Run("containment breach carries the sealing chain", func(t *testing.T) {
		chain, err := Default().StrategiesFor(fault.CategoryContainmentBreach)
		require.NoError(t, err)
		require.Len(t, chain, 2)

		assert.Equal(t, "BarrierReinforcement", chain[0].Name)
		assert.InDelta(t, 0.8, chain[0].SuccessProbability, 1e-9)
		assert.Equal(t, int64(2), chain[0].Cost["barrier_crystals"])

		assert.Equal(t, "EmergencySealing", chain[1].Name)
		assert.InDelta(t, 0.9, chain[1].SuccessProbability, 1e-9)
		assert.Equal(t, int64(4), chain[1].Cost["sealing_stones"])
	})

	t.Run("chains end with their most certain option", func(t *testing.T) {
		c := Default()
		for _, category := range fault.Categories() {
			chain, err := c.StrategiesFor(category)
			require.NoError(t, err)
			last := chain[len(chain)-1]
			assert.GreaterOrEqual(t, last.SuccessProbability, 0.8,
				"category %s final strategy %s should be the drastic, near-certain one", category, last.Name)
		}
	})
}
