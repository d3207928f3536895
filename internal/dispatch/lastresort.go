// internal/dispatch/lastresort.go
package dispatch

import (
	"fmt"

	"github.com/FairForge/wardkeeper/internal/fault"
)

// LastResortFunc produces the degraded resolution once a category's strategy
// chain is exhausted. Implementations must be total: always return, never
// panic. A panic is treated as a framework-internal error and escalates the
// fault.
type LastResortFunc func(category fault.Category, severity fault.Severity, context map[string]any) fault.Resolution

// genericLastResort is the default for categories without a registered
// handler: contain the affected zone and terminate the failing process. It
// never drops a fault silently.
func genericLastResort(category fault.Category, severity fault.Severity, _ map[string]any) fault.Resolution {
	return fault.Resolution{
		StrategyName: "FullContainment",
		Consequences: []string{
			"full_containment_" + category.String(),
			"forced_termination",
		},
		Notes: fmt.Sprintf("all recovery strategies exhausted at severity %s; zone contained and failing process terminated", severity),
	}
}
