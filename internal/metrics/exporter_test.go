package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_Collect(t *testing.T) {
	t.Run("exposes store counters as const metrics", func(t *testing.T) {
		s := NewStore()
		s.RecordAttempt(fault.CategoryContainmentBreach)
		s.RecordSuccess(fault.CategoryContainmentBreach, ledger.Cost{"sealing_stones": 4})

		e := NewExporter(s)

		expected := `
			# HELP wardkeeper_resources_consumed_total Resources consumed by successful recoveries
			# TYPE wardkeeper_resources_consumed_total counter
			wardkeeper_resources_consumed_total{category="containment_breach",resource="sealing_stones"} 4
		`
		err := testutil.CollectAndCompare(e, strings.NewReader(expected),
			"wardkeeper_resources_consumed_total")
		assert.NoError(t, err)
	})

	t.Run("scrapes reflect the live store", func(t *testing.T) {
		s := NewStore()
		e := NewExporter(s)

		s.RecordAttempt(fault.CategoryCascadeFailure)
		s.RecordFailure(fault.CategoryCascadeFailure)
		s.RecordStorm(fault.CategoryCascadeFailure)

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()
		e.Handler().ServeHTTP(rec, req)

		require.Equal(t, 200, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `wardkeeper_recovery_attempts_total{category="cascade_failure"} 1`)
		assert.Contains(t, body, `wardkeeper_recovery_failures_total{category="cascade_failure"} 1`)
		assert.Contains(t, body, `wardkeeper_fault_storms_total{category="cascade_failure"} 1`)
	})

	t.Run("emits a series for every category", func(t *testing.T) {
		e := NewExporter(NewStore())
		count := testutil.CollectAndCount(e, "wardkeeper_recovery_attempts_total")
		assert.Equal(t, len(fault.Categories()), count)
	})
}
