package systems

// Stage IDs in pipeline order. They double as perf phase names.
const (
	StagePredation        = "predation"
	StageOrganismMovement = "organism_movement"
	StagePredatorMovement = "predator_movement"
	StageDespawn          = "despawn"
	StageRegeneration     = "regeneration"
	StageConsumption      = "consumption"
	StageOvercrowding     = "overcrowding"
	StageAdaptation       = "adaptation"
	StageOrganismBreeding = "organism_reproduction"
	StagePredatorBreeding = "predator_reproduction"
	StagePopulationCap    = "population_cap"
)

// StageInfo describes a pipeline stage.
type StageInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
	Category    string // Grouping (e.g., "movement", "feeding")
}

// StageRegistry holds metadata about all stages.
// This centralizes stage naming so the pipeline and perf tracker stay in sync.
type StageRegistry struct {
	stages []StageInfo
}

// NewStageRegistry creates a registry with all known stages in tick order.
func NewStageRegistry() *StageRegistry {
	reg := &StageRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known stages to the registry.
// Registration order is execution order.
func (r *StageRegistry) registerDefaults() {
	r.Register(StageInfo{ID: StagePredation, Name: "Predation", Description: "Hungry predators eat co-located prey", Category: "interaction"})

	r.Register(StageInfo{ID: StageOrganismMovement, Name: "Organism Movement", Description: "Foragers step to the cheapest neighbor", Category: "movement"})
	r.Register(StageInfo{ID: StagePredatorMovement, Name: "Predator Movement", Description: "Predators pursue adjacent prey or forage", Category: "movement"})

	r.Register(StageInfo{ID: StageDespawn, Name: "Despawn", Description: "Removes agents with no energy left", Category: "population"})

	r.Register(StageInfo{ID: StageRegeneration, Name: "Regeneration", Description: "Tiles regrow food toward their cap", Category: "feeding"})
	r.Register(StageInfo{ID: StageConsumption, Name: "Consumption", Description: "Foragers eat, largest first", Category: "feeding"})

	r.Register(StageInfo{ID: StageOvercrowding, Name: "Overcrowding", Description: "Culls the weakest agents on crowded tiles", Category: "population"})
	r.Register(StageInfo{ID: StageAdaptation, Name: "Adaptation", Description: "Applies biome energy effects", Category: "environment"})

	r.Register(StageInfo{ID: StageOrganismBreeding, Name: "Organism Reproduction", Description: "Foragers split with mutation", Category: "reproduction"})
	r.Register(StageInfo{ID: StagePredatorBreeding, Name: "Predator Reproduction", Description: "Predators split with mutation", Category: "reproduction"})

	r.Register(StageInfo{ID: StagePopulationCap, Name: "Population Cap", Description: "Randomly culls agents above the global maximum", Category: "population"})
}

// Register adds a stage to the registry.
func (r *StageRegistry) Register(info StageInfo) {
	r.stages = append(r.stages, info)
}

// All returns all registered stages.
func (r *StageRegistry) All() []StageInfo {
	return r.stages
}

// IDs returns all stage IDs in registration order.
func (r *StageRegistry) IDs() []string {
	ids := make([]string, len(r.stages))
	for i, info := range r.stages {
		ids[i] = info.ID
	}
	return ids
}
