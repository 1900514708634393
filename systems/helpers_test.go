package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

// countingRecorder tallies lifecycle events for assertions.
type countingRecorder struct {
	births, deaths, kills, overcrowded, culled, blocked int
}

func (r *countingRecorder) RecordBirth(components.Kind)               { r.births++ }
func (r *countingRecorder) RecordDeath(components.Kind)               { r.deaths++ }
func (r *countingRecorder) RecordKill()                               { r.kills++ }
func (r *countingRecorder) RecordOvercrowded(components.Kind)         { r.overcrowded++ }
func (r *countingRecorder) RecordCapCull(components.Kind)             { r.culled++ }
func (r *countingRecorder) RecordReproductionBlocked(components.Kind) { r.blocked++ }

// newTestContext builds a context over a uniform grid of one biome with 50 food per tile.
func newTestContext(t *testing.T, width, height int, biome world.Biome, mutate func(*config.Config)) (*Context, *countingRecorder) {
	t.Helper()

	cfg := config.Default()
	cfg.World.Width = width
	cfg.World.Height = height
	if mutate != nil {
		mutate(cfg)
	}

	grid := &world.World{Width: width, Height: height, Tiles: make([]world.Tile, width*height)}
	for i := range grid.Tiles {
		grid.Tiles[i] = world.Tile{Biome: biome, Temperature: 20, Humidity: 0.5, Food: 50}
	}

	rec := &countingRecorder{}
	return NewContext(ecs.NewWorld(), grid, cfg, nil, rec), rec
}

func uniformTolerance(v float32) components.BiomeTolerance {
	return components.BiomeTolerance{v, v, v, v}
}

func testOrganism(energy float32) components.Organism {
	return components.Organism{
		Energy:                energy,
		Speed:                 1,
		Size:                  1,
		ReproductionThreshold: 1000,
		Tolerance:             uniformTolerance(1),
	}
}

func testPredator(energy float32) components.Predator {
	return components.Predator{
		Energy:                energy,
		Speed:                 1,
		Size:                  1,
		ReproductionThreshold: 1000,
		HuntingEfficiency:     1,
		SatiationThreshold:    100,
	}
}

// assertInBounds fails if any agent sits outside the grid.
func assertInBounds(t *testing.T, ctx *Context) {
	t.Helper()
	orgs := ctx.Agents.Organisms()
	for orgs.Next() {
		pos, _ := orgs.Get()
		if !ctx.Grid.InBounds(pos.X, pos.Y) {
			t.Errorf("organism out of bounds at %+v", *pos)
		}
	}
	preds := ctx.Agents.Predators()
	for preds.Next() {
		pos, _ := preds.Get()
		if !ctx.Grid.InBounds(pos.X, pos.Y) {
			t.Errorf("predator out of bounds at %+v", *pos)
		}
	}
}
