package systems

import (
	"sort"

	"github.com/pthm-cable/habitat/components"
)

// Feeding constants
const (
	FoodNeedFactor   float32 = 0.2 // need = size * FoodNeedFactor * speed
	FoodToEnergyGain float32 = 2.0 // energy gained per unit of food
)

// FeedingSystem runs the tile food economy: regrowth and forager consumption.
type FeedingSystem struct {
	index  *TileIndex
	eaters []*components.Organism
}

// NewFeedingSystem creates a feeding system for a width x height grid.
func NewFeedingSystem(width, height int) *FeedingSystem {
	return &FeedingSystem{index: NewTileIndex(width, height)}
}

// Regenerate regrows food on every tile below its biome cap.
func (s *FeedingSystem) Regenerate(ctx *Context) {
	ctx.Grid.Regenerate(&ctx.Biomes)
}

// Consume lets co-located foragers eat from their tile, largest first.
// Each takes min(size*0.2*speed, remaining) and gains twice that in energy.
// A tile stops serving once its food runs out. Returns total food eaten.
func (s *FeedingSystem) Consume(ctx *Context) float64 {
	s.index.Clear()
	query := ctx.Agents.Organisms()
	for query.Next() {
		pos, org := query.Get()
		if org.Alive() {
			s.index.Insert(query.Entity(), *pos)
		}
	}

	var eaten float64
	s.index.Each(func(x, y int, occupants []Occupant) {
		tile := ctx.Grid.At(x, y)
		if tile.Food < 0 {
			return
		}

		s.eaters = s.eaters[:0]
		for _, o := range occupants {
			if _, org := ctx.Agents.Organism(o.E); org != nil {
				s.eaters = append(s.eaters, org)
			}
		}
		sort.SliceStable(s.eaters, func(i, j int) bool {
			return s.eaters[i].Size > s.eaters[j].Size
		})

		for _, org := range s.eaters {
			if tile.Food <= 0 {
				break
			}
			need := org.Size * FoodNeedFactor * org.Speed
			took := min(need, tile.Food)
			tile.Food -= took
			org.Energy += took * FoodToEnergyGain
			eaten += float64(took)
		}
	})

	return eaten
}
