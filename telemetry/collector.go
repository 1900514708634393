package telemetry

import (
	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

// Collector accumulates lifecycle events within one generation and produces GenerationStats.
// It satisfies the stage pipeline's event recorder.
type Collector struct {
	runID string

	births      [len(components.Kinds)]int
	deaths      [len(components.Kinds)]int
	overcrowded [len(components.Kinds)]int
	capCulls    [len(components.Kinds)]int
	blocked     [len(components.Kinds)]int
	kills       int
}

// NewCollector creates a collector that stamps every flushed record with runID.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(kind components.Kind) {
	c.births[kind]++
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(kind components.Kind) {
	c.deaths[kind]++
}

// RecordKill records a predator eating a prey.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordOvercrowded records an agent marked dead by overcrowding.
func (c *Collector) RecordOvercrowded(kind components.Kind) {
	c.overcrowded[kind]++
}

// RecordCapCull records an agent removed by the population cap.
func (c *Collector) RecordCapCull(kind components.Kind) {
	c.capCulls[kind]++
}

// RecordReproductionBlocked records a reproduction stage skipped at capacity.
func (c *Collector) RecordReproductionBlocked(kind components.Kind) {
	c.blocked[kind]++
}

// Flush produces the stats for a finished generation and resets counters for the next one.
func (c *Collector) Flush(generation int, pop Population, grid *world.World) GenerationStats {
	stats := ComputeGenerationStats(generation, pop, grid)
	stats.RunID = c.runID

	stats.OrganismBirths = c.births[components.KindOrganism]
	stats.PredatorBirths = c.births[components.KindPredator]
	stats.OrganismDeaths = c.deaths[components.KindOrganism]
	stats.PredatorDeaths = c.deaths[components.KindPredator]
	stats.Kills = c.kills
	stats.Overcrowded = c.overcrowded[components.KindOrganism] + c.overcrowded[components.KindPredator]
	stats.CapCulls = c.capCulls[components.KindOrganism] + c.capCulls[components.KindPredator]
	stats.ReproductionBlocked = c.blocked[components.KindOrganism] + c.blocked[components.KindPredator]

	c.reset()
	return stats
}

func (c *Collector) reset() {
	c.births = [len(components.Kinds)]int{}
	c.deaths = [len(components.Kinds)]int{}
	c.overcrowded = [len(components.Kinds)]int{}
	c.capCulls = [len(components.Kinds)]int{}
	c.blocked = [len(components.Kinds)]int{}
	c.kills = 0
}
