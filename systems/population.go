package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

// PopulationSystem owns agent removal: despawning the dead, overcrowding
// culls and the global population cap.
type PopulationSystem struct {
	index    *TileIndex
	toRemove []removal
	crowd    []*float32 // energies of the cell being culled
}

type removal struct {
	entity ecs.Entity
	kind   components.Kind
}

// NewPopulationSystem creates a population system for a width x height grid.
func NewPopulationSystem(width, height int) *PopulationSystem {
	return &PopulationSystem{index: NewTileIndex(width, height)}
}

// Despawn removes every agent whose energy is at or below zero.
// Returns the number removed per species.
func (s *PopulationSystem) Despawn(ctx *Context) (organisms, predators int) {
	// First pass: collect dead entities (must complete before modifying)
	s.toRemove = s.toRemove[:0]

	orgs := ctx.Agents.Organisms()
	for orgs.Next() {
		_, org := orgs.Get()
		if !org.Alive() {
			s.toRemove = append(s.toRemove, removal{entity: orgs.Entity(), kind: components.KindOrganism})
		}
	}

	preds := ctx.Agents.Predators()
	for preds.Next() {
		_, pred := preds.Get()
		if !pred.Alive() {
			s.toRemove = append(s.toRemove, removal{entity: preds.Entity(), kind: components.KindPredator})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, dead := range s.toRemove {
		ctx.Agents.Remove(dead.entity)
		ctx.Recorder.RecordDeath(dead.kind)
		if dead.kind == components.KindOrganism {
			organisms++
		} else {
			predators++
		}
	}

	return organisms, predators
}

// Overcrowding marks the weakest agents dead on any cell where a species
// exceeds its threshold. Lowest energy goes first; ties keep query order.
// Marked agents are removed by the next Despawn. Returns the number marked.
func (s *PopulationSystem) Overcrowding(ctx *Context) int {
	marked := 0

	s.index.Clear()
	orgs := ctx.Agents.Organisms()
	for orgs.Next() {
		pos, org := orgs.Get()
		if org.Alive() {
			s.index.Insert(orgs.Entity(), *pos)
		}
	}
	s.index.Crowded(ctx.Cfg.Organism.OvercrowdingThreshold, func(occupants []Occupant) {
		s.crowd = s.crowd[:0]
		for _, o := range occupants {
			if _, org := ctx.Agents.Organism(o.E); org != nil {
				s.crowd = append(s.crowd, &org.Energy)
			}
		}
		marked += s.cull(ctx, components.KindOrganism, ctx.Cfg.Organism.OvercrowdingThreshold)
	})

	s.index.Clear()
	preds := ctx.Agents.Predators()
	for preds.Next() {
		pos, pred := preds.Get()
		if pred.Alive() {
			s.index.Insert(preds.Entity(), *pos)
		}
	}
	s.index.Crowded(ctx.Cfg.Predator.OvercrowdingThreshold, func(occupants []Occupant) {
		s.crowd = s.crowd[:0]
		for _, o := range occupants {
			if _, pred := ctx.Agents.Predator(o.E); pred != nil {
				s.crowd = append(s.crowd, &pred.Energy)
			}
		}
		marked += s.cull(ctx, components.KindPredator, ctx.Cfg.Predator.OvercrowdingThreshold)
	})

	return marked
}

// cull sorts the current crowd by energy ascending and kills all but threshold members.
func (s *PopulationSystem) cull(ctx *Context, kind components.Kind, threshold int) int {
	excess := len(s.crowd) - threshold
	if excess <= 0 {
		return 0
	}

	sort.SliceStable(s.crowd, func(i, j int) bool {
		return *s.crowd[i] < *s.crowd[j]
	})

	for _, energy := range s.crowd[:excess] {
		*energy = world.LethalEnergy
		ctx.Recorder.RecordOvercrowded(kind)
		ctx.Logger.Debug("agent died due to overcrowding", "kind", kind.String())
	}
	return excess
}

// EnforceCap removes a uniformly random subset of living agents so that at most
// max_total_entities of them remain. Agents already marked dead are left for
// the next Despawn and neither count toward the cap nor get picked.
// Returns the number removed.
func (s *PopulationSystem) EnforceCap(ctx *Context) int {
	limit := ctx.Cfg.Population.MaxTotalEntities
	handles := ctx.Agents.LivingHandles()
	over := len(handles) - limit
	if over <= 0 {
		return 0
	}

	rng := ctx.Rand()
	rng.Shuffle(len(handles), func(i, j int) {
		handles[i], handles[j] = handles[j], handles[i]
	})

	for _, e := range handles[:over] {
		kind, ok := ctx.Agents.KindOf(e)
		if !ok {
			continue
		}
		ctx.Agents.Remove(e)
		ctx.Recorder.RecordCapCull(kind)
		ctx.Recorder.RecordDeath(kind)
	}

	ctx.Logger.Debug("population cap enforced", "removed", over, "max", limit)
	return over
}
