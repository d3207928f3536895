// internal/catalog/defaults.go
package catalog

import (
	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
)

// Default returns the built-in catalog. Chains are ordered cheapest and
// gentlest first; the final entry in each chain is the drastic, most certain
// option before the dispatcher falls through to the last resort.
func Default() *Catalog {
	c, err := New(defaultChains())
	if err != nil {
		// The table below is static; failing validation is a programming
		// error, not a runtime condition.
		panic("catalog: default table invalid: " + err.Error())
	}
	return c
}

func defaultChains() map[fault.Category][]Strategy {
	return map[fault.Category][]Strategy{
		fault.CategoryProcessInterruption: {
			{Name: "CircleRestabilization", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"focus_crystals": 1},
				SideEffects: []string{"process_resumed"},
				Fallback:    "GracefulUnwind"},
			{Name: "GracefulUnwind", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"mana_reserve": 2},
				SideEffects: []string{"process_aborted_cleanly"}},
			{Name: "ForcedDissipation", SuccessProbability: 0.95,
				SideEffects: []string{"energy_vented", "process_lost"}},
		},
		fault.CategoryEnergyBacklash: {
			{Name: "GroundingRod", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"grounding_rods": 1},
				SideEffects: []string{"charge_grounded"}},
			{Name: "AbsorptionMatrix", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"absorption_gems": 2},
				SideEffects: []string{"energy_stored"}},
			{Name: "ControlledVenting", SuccessProbability: 0.9,
				SideEffects: []string{"area_scorched"}},
		},
		fault.CategoryEnergyOverload: {
			{Name: "ConduitVenting", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"vent_seals": 1},
				SideEffects: []string{"pressure_released"}},
			{Name: "LoadShedding", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"mana_reserve": 3},
				SideEffects: []string{"subsystems_dimmed"}},
			{Name: "EmergencyShutdown", SuccessProbability: 0.98,
				SideEffects: []string{"nexus_offline"}},
		},
		fault.CategoryFeedbackLoop: {
			{Name: "DampeningField", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"dampener_coils": 2},
				SideEffects: []string{"oscillation_damped"}},
			{Name: "PhaseInversion", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"phase_mirrors": 1},
				SideEffects: []string{"loop_inverted"}},
			{Name: "CircuitSevering", SuccessProbability: 0.95,
				SideEffects: []string{"circuit_destroyed"}},
		},
		fault.CategoryPowerNexusFailure: {
			{Name: "AuxiliaryNexusSwitch", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"auxiliary_cores": 1},
				SideEffects: []string{"load_transferred"}},
			{Name: "CoreRekindling", SuccessProbability: 0.6,
				Cost:        ledger.Cost{"ignition_catalysts": 3},
				SideEffects: []string{"core_relit"}},
			{Name: "NexusQuarantine", SuccessProbability: 0.9,
				SideEffects: []string{"district_unpowered"}},
		},
		fault.CategorySpatialAnomaly: {
			{Name: "SpatialAnchoring", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"anchor_stones": 2},
				SideEffects: []string{"geometry_pinned"}},
			{Name: "FoldSmoothing", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"calibration_lenses": 1},
				SideEffects: []string{"fold_flattened"}},
			{Name: "AnomalyExcision", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"void_salt": 2},
				SideEffects: []string{"region_excised"}},
		},
		fault.CategoryContainmentBreach: {
			{Name: "BarrierReinforcement", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"barrier_crystals": 2},
				SideEffects: []string{"barrier_hardened"},
				Fallback:    "EmergencySealing"},
			{Name: "EmergencySealing", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"sealing_stones": 4},
				SideEffects: []string{"area_sealed"}},
		},
		fault.CategoryFieldInstability: {
			{Name: "HarmonicRetuning", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"tuning_forks": 1},
				SideEffects: []string{"field_retuned"}},
			{Name: "FieldReweaving", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"weave_thread": 3},
				SideEffects: []string{"lattice_rewoven"}},
			{Name: "FieldCollapse", SuccessProbability: 0.95,
				SideEffects: []string{"field_dropped"}},
		},
		fault.CategoryStructureCollapse: {
			{Name: "LoadRedistribution", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"support_struts": 4},
				SideEffects: []string{"load_shifted"}},
			{Name: "PetrificationLock", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"petrifying_dust": 2},
				SideEffects: []string{"structure_frozen"}},
			{Name: "ControlledDemolition", SuccessProbability: 0.9,
				SideEffects: []string{"structure_razed"}},
		},
		fault.CategoryCascadeFailure: {
			{Name: "CascadeInterrupt", SuccessProbability: 0.65,
				Cost:        ledger.Cost{"interrupt_runes": 2},
				SideEffects: []string{"cascade_halted"},
				Fallback:    "FirebreakWards"},
			{Name: "FirebreakWards", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"warding_chalk": 5},
				SideEffects: []string{"spread_contained"}},
			{Name: "SystemIsolation", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"isolation_seals": 1},
				SideEffects: []string{"subsystem_cut_off"}},
		},
		fault.CategoryParadoxManifestation: {
			{Name: "ParadoxReconciliation", SuccessProbability: 0.6,
				Cost:        ledger.Cost{"logic_prisms": 2},
				SideEffects: []string{"contradiction_resolved"}},
			{Name: "CausalQuarantine", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"causal_thread": 3},
				SideEffects: []string{"paradox_boxed"}},
			{Name: "RealityReassertion", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"consensus_sigils": 2},
				SideEffects: []string{"baseline_restored"}},
		},
		fault.CategoryTemporalParadox: {
			{Name: "TimelineSplicing", SuccessProbability: 0.6,
				Cost:        ledger.Cost{"chronal_filament": 2},
				SideEffects: []string{"timeline_mended"}},
			{Name: "LoopSeverance", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"severance_blades": 1},
				SideEffects: []string{"loop_cut"}},
			{Name: "TemporalFreeze", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"stasis_cores": 2},
				SideEffects: []string{"region_frozen_in_time"}},
		},
		fault.CategoryRealmConvergence: {
			{Name: "BoundaryRestoration", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"boundary_wards": 3},
				SideEffects: []string{"realms_separated"}},
			{Name: "ConvergenceDamming", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"rift_pylons": 2},
				SideEffects: []string{"overlap_dammed"}},
			{Name: "RealmSevering", SuccessProbability: 0.85,
				SideEffects: []string{"crossing_points_destroyed"}},
		},
		fault.CategoryDimensionalBleed: {
			{Name: "BleedPatching", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"membrane_patches": 2},
				SideEffects: []string{"membrane_patched"}},
			{Name: "PressureEqualization", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"equalizer_valves": 1},
				SideEffects: []string{"pressure_equalized"}},
			{Name: "DimensionalCauterization", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"cauterizing_flame": 1},
				SideEffects: []string{"bleed_cauterized"}},
		},
		fault.CategoryEnvironmentalStorm: {
			{Name: "StormDissipation", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"calming_censers": 2},
				SideEffects: []string{"storm_dispersed"}},
			{Name: "WeatherShielding", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"storm_shields": 3},
				SideEffects: []string{"area_shielded"}},
			{Name: "StormRedirection", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"lodestone_arrays": 1},
				SideEffects: []string{"storm_redirected"}},
		},
		fault.CategoryResourceCrystallization: {
			{Name: "SolventInfusion", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"universal_solvent": 1},
				SideEffects: []string{"deposits_dissolved"}},
			{Name: "ResonantShattering", SuccessProbability: 0.75,
				Cost:        ledger.Cost{"resonance_hammers": 1},
				SideEffects: []string{"crystals_shattered"}},
			{Name: "VeinAbandonment", SuccessProbability: 0.95,
				SideEffects: []string{"deposit_written_off"}},
		},
		fault.CategoryEntityPhaseShift: {
			{Name: "PhaseAnchoring", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"phase_anchors": 1},
				SideEffects: []string{"entity_anchored"}},
			{Name: "ResonanceMatching", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"attunement_bells": 2},
				SideEffects: []string{"phases_matched"}},
			{Name: "PhaseLocking", SuccessProbability: 0.9,
				Cost:        ledger.Cost{"binding_chains": 2},
				SideEffects: []string{"entity_locked"}},
		},
		fault.CategoryIdentityMatrixFault: {
			{Name: "MatrixDefragmentation", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"memory_lattices": 2},
				SideEffects: []string{"matrix_defragmented"}},
			{Name: "BackupRestoration", SuccessProbability: 0.85,
				Cost:        ledger.Cost{"soul_mirrors": 1},
				SideEffects: []string{"identity_restored"}},
			{Name: "CoreIdentityReseed", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"essence_seeds": 3},
				SideEffects: []string{"identity_reseeded"}},
		},
		fault.CategoryAwarenessBleed: {
			{Name: "MindWarding", SuccessProbability: 0.8,
				Cost:        ledger.Cost{"warding_talismans": 2},
				SideEffects: []string{"minds_warded"}},
			{Name: "ThoughtDamming", SuccessProbability: 0.7,
				Cost:        ledger.Cost{"null_stones": 1},
				SideEffects: []string{"bleed_dammed"}},
			{Name: "CollectiveSevering", SuccessProbability: 0.9,
				SideEffects: []string{"links_severed"}},
		},
	}
}
