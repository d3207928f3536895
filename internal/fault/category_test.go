package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	t.Run("covers all nineteen failure modes", func(t *testing.T) {
		cats := Categories()
		assert.Len(t, cats, 19)

		seen := make(map[Category]bool)
		for _, c := range cats {
			assert.True(t, c.Valid(), "category %q should be valid", c)
			assert.False(t, seen[c], "category %q listed twice", c)
			seen[c] = true
		}
	})

	t.Run("returns a copy callers cannot corrupt", func(t *testing.T) {
		cats := Categories()
		cats[0] = Category("tampered")
		assert.Equal(t, CategoryProcessInterruption, Categories()[0])
	})
}

func TestParseCategory(t *testing.T) {
	t.Run("round trips every category", func(t *testing.T) {
		for _, c := range Categories() {
			parsed, err := ParseCategory(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParseCategory("mana_shortage")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mana_shortage")
	})

	t.Run("rejects the empty string", func(t *testing.T) {
		_, err := ParseCategory("")
		assert.Error(t, err)
	})
}
