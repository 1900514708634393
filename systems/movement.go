package systems

import (
	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

// Movement tuning.
const (
	moveJitter    = 5.0 // cost noise is drawn from [0, moveJitter)
	attackRangeSq = 1   // prey within this squared distance is pursued
)

// mooreNeighborhood lists candidate steps in evaluation order.
// Staying put is never a candidate, though clamping at an edge can produce it.
var mooreNeighborhood = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// MovementSystem steps every living agent by one cell per tick.
type MovementSystem struct {
	prey *TileIndex
}

// NewMovementSystem creates a movement system for a width x height grid.
func NewMovementSystem(width, height int) *MovementSystem {
	return &MovementSystem{prey: NewTileIndex(width, height)}
}

// MoveOrganisms moves each living forager to its cheapest neighbor.
// Cost is the biome's base cost divided by the forager's tolerance, plus jitter.
// Ending a step on Water is lethal.
func (s *MovementSystem) MoveOrganisms(ctx *Context) {
	rng := ctx.Rand()
	grid := ctx.Grid
	moveCost := float32(ctx.Cfg.Organism.MoveCost)

	query := ctx.Agents.Organisms()
	for query.Next() {
		pos, org := query.Get()
		if !org.Alive() {
			continue
		}

		best := *pos
		bestCost := float32(-1)
		for _, d := range mooreNeighborhood {
			x, y := grid.Clamp(pos.X+d[0], pos.Y+d[1])
			biome := grid.At(x, y).Biome
			cost := ctx.Biomes[biome].OrganismMoveCost/org.Tolerance.For(biome) + rng.Float32()*moveJitter
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				best = components.Position{X: x, Y: y}
			}
		}
		*pos = best

		org.Energy -= moveCost * org.Speed * org.Size

		if grid.At(pos.X, pos.Y).Biome == world.Water {
			org.Kill()
		}
	}
}

// MovePredators moves each living predator. A predator with living prey within
// attack range steps one cell toward the nearest; otherwise it takes the cheapest
// neighbor by predator terrain costs. Energy then decays by rate * speed * size.
func (s *MovementSystem) MovePredators(ctx *Context) {
	rng := ctx.Rand()
	grid := ctx.Grid
	decay := float32(ctx.Cfg.Predator.EnergyDecayRate)

	s.indexLivingPrey(ctx)

	query := ctx.Agents.Predators()
	for query.Next() {
		pos, pred := query.Get()
		if !pred.Alive() {
			continue
		}

		if target, ok := s.prey.Nearest(*pos, attackRangeSq); ok {
			pos.X, pos.Y = grid.Clamp(pos.X+sign(target.Pos.X-pos.X), pos.Y+sign(target.Pos.Y-pos.Y))
		} else {
			best := *pos
			bestCost := float32(-1)
			for _, d := range mooreNeighborhood {
				x, y := grid.Clamp(pos.X+d[0], pos.Y+d[1])
				cost := ctx.Biomes[grid.At(x, y).Biome].PredatorMoveCost + rng.Float32()*moveJitter
				if bestCost < 0 || cost < bestCost {
					bestCost = cost
					best = components.Position{X: x, Y: y}
				}
			}
			*pos = best
		}

		pred.Energy -= decay * pred.Speed * pred.Size
	}
}

// indexLivingPrey rebuilds the prey index from current forager positions.
func (s *MovementSystem) indexLivingPrey(ctx *Context) {
	s.prey.Clear()
	query := ctx.Agents.Organisms()
	for query.Next() {
		pos, org := query.Get()
		if org.Alive() {
			s.prey.Insert(query.Entity(), *pos)
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
