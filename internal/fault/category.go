// internal/fault/category.go
package fault

import "fmt"

// Category classifies the failure mode of a reported fault.
type Category string

const (
	// Process and energy faults
	CategoryProcessInterruption Category = "process_interruption"
	CategoryEnergyBacklash      Category = "energy_backlash"
	CategoryEnergyOverload      Category = "energy_overload"
	CategoryFeedbackLoop        Category = "feedback_loop"
	CategoryPowerNexusFailure   Category = "power_nexus_failure"

	// Spatial and structural faults
	CategorySpatialAnomaly    Category = "spatial_anomaly"
	CategoryContainmentBreach Category = "containment_breach"
	CategoryFieldInstability  Category = "field_instability"
	CategoryStructureCollapse Category = "structure_collapse"
	CategoryCascadeFailure    Category = "cascade_failure"

	// Dimensional and temporal faults
	CategoryParadoxManifestation Category = "paradox_manifestation"
	CategoryTemporalParadox      Category = "temporal_paradox"
	CategoryRealmConvergence     Category = "realm_convergence"
	CategoryDimensionalBleed     Category = "dimensional_bleed"

	// Environmental and resource faults
	CategoryEnvironmentalStorm      Category = "environmental_storm"
	CategoryResourceCrystallization Category = "resource_crystallization"

	// Entity faults
	CategoryEntityPhaseShift    Category = "entity_phase_shift"
	CategoryIdentityMatrixFault Category = "identity_matrix_fault"
	CategoryAwarenessBleed      Category = "awareness_bleed"
)

var allCategories = []Category{
	CategoryProcessInterruption,
	CategoryEnergyBacklash,
	CategoryEnergyOverload,
	CategoryFeedbackLoop,
	CategoryPowerNexusFailure,
	CategorySpatialAnomaly,
	CategoryContainmentBreach,
	CategoryFieldInstability,
	CategoryStructureCollapse,
	CategoryCascadeFailure,
	CategoryParadoxManifestation,
	CategoryTemporalParadox,
	CategoryRealmConvergence,
	CategoryDimensionalBleed,
	CategoryEnvironmentalStorm,
	CategoryResourceCrystallization,
	CategoryEntityPhaseShift,
	CategoryIdentityMatrixFault,
	CategoryAwarenessBleed,
}

var categorySet = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(allCategories))
	for _, c := range allCategories {
		m[c] = struct{}{}
	}
	return m
}()

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}

func (c Category) String() string { return string(c) }

// ParseCategory converts the wire form of a category back to its typed value.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("fault: unknown category %q", s)
	}
	return c, nil
}
