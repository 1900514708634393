package game

import (
	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/systems"
	"github.com/pthm-cable/habitat/telemetry"
)

// spawnInitialPopulation places the configured organisms and predators on uniformly random cells.
// Each organism's tolerances favor the biome it spawns on. Organisms landing
// on Water start dead and are removed by the first despawn pass.
func (s *Simulation) spawnInitialPopulation() {
	cfg := s.cfg
	rng := s.ctx.Rand()
	agents := s.ctx.Agents

	for i := 0; i < cfg.Organism.InitialCount; i++ {
		pos := components.Position{X: rng.Intn(s.grid.Width), Y: rng.Intn(s.grid.Height)}
		home := s.grid.At(pos.X, pos.Y).Biome
		org := components.Organism{
			Energy:                float32(cfg.Organism.InitialEnergy),
			Speed:                 float32(cfg.Organism.Speed),
			Size:                  float32(cfg.Organism.Size),
			ReproductionThreshold: float32(cfg.Organism.ReproductionThreshold),
			ReproductionCooldown:  float32(cfg.Organism.ReproductionCooldown),
			Tolerance:             systems.DrawTolerance(home, rng),
		}
		systems.DrownOnWater(s.grid, pos, &org)
		agents.SpawnOrganism(pos, org)
	}

	for i := 0; i < cfg.Predator.InitialCount; i++ {
		pos := components.Position{X: rng.Intn(s.grid.Width), Y: rng.Intn(s.grid.Height)}
		agents.SpawnPredator(pos, components.Predator{
			Energy:                float32(cfg.Predator.InitialEnergy),
			Speed:                 float32(cfg.Predator.Speed),
			Size:                  float32(cfg.Predator.Size),
			ReproductionThreshold: float32(cfg.Predator.ReproductionThreshold),
			HuntingEfficiency:     float32(cfg.Predator.HuntingEfficiency),
			SatiationThreshold:    float32(cfg.Predator.SatiationThreshold),
			ReproductionCooldown:  float32(cfg.Predator.ReproductionCooldown),
		})
	}
}

// sample copies every stored agent, dead or alive, in store order.
func (s *Simulation) sample() (telemetry.Population, []telemetry.OrganismRecord, []telemetry.PredatorRecord) {
	agents := s.ctx.Agents
	orgCount, predCount := agents.Counts()

	pop := telemetry.Population{
		Organisms: make([]components.Organism, 0, orgCount),
		Predators: make([]components.Predator, 0, predCount),
	}
	orgRecords := make([]telemetry.OrganismRecord, 0, orgCount)
	predRecords := make([]telemetry.PredatorRecord, 0, predCount)

	oq := agents.Organisms()
	for oq.Next() {
		pos, org := oq.Get()
		pop.Organisms = append(pop.Organisms, *org)
		orgRecords = append(orgRecords, telemetry.OrganismRecord{Organism: *org, Position: *pos})
	}

	pq := agents.Predators()
	for pq.Next() {
		pos, pred := pq.Get()
		pop.Predators = append(pop.Predators, *pred)
		predRecords = append(predRecords, telemetry.PredatorRecord{Predator: *pred, Position: *pos})
	}

	return pop, orgRecords, predRecords
}

// Snapshot returns a copy of the full simulation state.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	_, orgs, preds := s.sample()
	return &telemetry.Snapshot{
		RunID:      s.runID,
		Generation: s.generation,
		Config:     s.cfg.Clone(),
		World:      s.grid.Clone(),
		Organisms:  orgs,
		Predators:  preds,
	}
}
