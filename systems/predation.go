package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
)

// PredationSystem resolves predator/prey contact on shared cells.
type PredationSystem struct {
	prey  *TileIndex
	eaten []ecs.Entity
}

// NewPredationSystem creates a predation system for a width x height grid.
func NewPredationSystem(width, height int) *PredationSystem {
	return &PredationSystem{prey: NewTileIndex(width, height)}
}

// Update lets each living, hungry predator eat the first living forager on its cell.
// The predator gains prey.size * hunting_efficiency, capped at the configured maximum.
// One kill per predator per tick; eaten prey are removed when the pass ends.
// Returns the number of kills.
func (s *PredationSystem) Update(ctx *Context) int {
	maxEnergy := float32(ctx.Cfg.Predator.MaxEnergy)

	s.prey.Clear()
	orgs := ctx.Agents.Organisms()
	for orgs.Next() {
		pos, org := orgs.Get()
		if org.Alive() {
			s.prey.Insert(orgs.Entity(), *pos)
		}
	}

	s.eaten = s.eaten[:0]

	query := ctx.Agents.Predators()
	for query.Next() {
		pos, pred := query.Get()
		if !pred.Alive() || !pred.Hungry() {
			continue
		}

		for _, o := range s.prey.At(pos.X, pos.Y) {
			_, prey := ctx.Agents.Organism(o.E)
			if prey == nil || !prey.Alive() {
				continue
			}

			pred.Energy = min(pred.Energy+prey.Size*pred.HuntingEfficiency, maxEnergy)
			prey.Kill()
			s.eaten = append(s.eaten, o.E)
			break
		}
	}

	// Remove prey after the query closes
	for _, e := range s.eaten {
		ctx.Agents.Remove(e)
		ctx.Recorder.RecordKill()
		ctx.Recorder.RecordDeath(components.KindOrganism)
	}

	return len(s.eaten)
}
