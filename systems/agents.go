// Package systems provides the ECS stages of the tick pipeline.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
)

// Agents wraps the ECS world with typed access to both species.
// Organisms carry (Position, Organism); predators carry (Position, Predator).
type Agents struct {
	world *ecs.World

	orgMapper  *ecs.Map2[components.Position, components.Organism]
	predMapper *ecs.Map2[components.Position, components.Predator]

	orgFilter  *ecs.Filter2[components.Position, components.Organism]
	predFilter *ecs.Filter2[components.Position, components.Predator]
}

// NewAgents creates the mappers and filters for an ECS world.
func NewAgents(w *ecs.World) *Agents {
	return &Agents{
		world:      w,
		orgMapper:  ecs.NewMap2[components.Position, components.Organism](w),
		predMapper: ecs.NewMap2[components.Position, components.Predator](w),
		orgFilter:  ecs.NewFilter2[components.Position, components.Organism](w),
		predFilter: ecs.NewFilter2[components.Position, components.Predator](w),
	}
}

// World returns the underlying ECS world.
func (a *Agents) World() *ecs.World { return a.world }

// SpawnOrganism adds a forager. Must not be called while a query is open.
func (a *Agents) SpawnOrganism(pos components.Position, org components.Organism) ecs.Entity {
	return a.orgMapper.NewEntity(&pos, &org)
}

// SpawnPredator adds a predator. Must not be called while a query is open.
func (a *Agents) SpawnPredator(pos components.Position, pred components.Predator) ecs.Entity {
	return a.predMapper.NewEntity(&pos, &pred)
}

// Remove deletes an agent. Removing an already removed handle is a no-op.
func (a *Agents) Remove(e ecs.Entity) {
	if a.world.Alive(e) {
		a.world.RemoveEntity(e)
	}
}

// Organism returns the components of a forager, or nils if e is not one.
func (a *Agents) Organism(e ecs.Entity) (*components.Position, *components.Organism) {
	if !a.world.Alive(e) || !a.orgMapper.HasAll(e) {
		return nil, nil
	}
	return a.orgMapper.Get(e)
}

// Predator returns the components of a predator, or nils if e is not one.
func (a *Agents) Predator(e ecs.Entity) (*components.Position, *components.Predator) {
	if !a.world.Alive(e) || !a.predMapper.HasAll(e) {
		return nil, nil
	}
	return a.predMapper.Get(e)
}

// Organisms opens a query over all foragers. The caller must exhaust or Close it.
func (a *Agents) Organisms() ecs.Query2[components.Position, components.Organism] {
	return a.orgFilter.Query()
}

// Predators opens a query over all predators. The caller must exhaust or Close it.
func (a *Agents) Predators() ecs.Query2[components.Position, components.Predator] {
	return a.predFilter.Query()
}

// Counts returns the number of stored organisms and predators, dead or alive.
func (a *Agents) Counts() (organisms, predators int) {
	q := a.orgFilter.Query()
	organisms = q.Count()
	q.Close()

	pq := a.predFilter.Query()
	predators = pq.Count()
	pq.Close()

	return organisms, predators
}

// LivingCounts returns the number of agents with positive energy per species.
func (a *Agents) LivingCounts() (organisms, predators int) {
	q := a.orgFilter.Query()
	for q.Next() {
		_, org := q.Get()
		if org.Alive() {
			organisms++
		}
	}

	pq := a.predFilter.Query()
	for pq.Next() {
		_, pred := pq.Get()
		if pred.Alive() {
			predators++
		}
	}

	return organisms, predators
}

// LivingHandles returns the handle of every agent with positive energy,
// organisms first, in query order.
func (a *Agents) LivingHandles() []ecs.Entity {
	var out []ecs.Entity
	q := a.orgFilter.Query()
	for q.Next() {
		if _, org := q.Get(); org.Alive() {
			out = append(out, q.Entity())
		}
	}
	pq := a.predFilter.Query()
	for pq.Next() {
		if _, pred := pq.Get(); pred.Alive() {
			out = append(out, pq.Entity())
		}
	}
	return out
}

// KindOf reports which species e belongs to. ok is false for removed handles.
func (a *Agents) KindOf(e ecs.Entity) (kind components.Kind, ok bool) {
	if !a.world.Alive(e) {
		return 0, false
	}
	if a.orgMapper.HasAll(e) {
		return components.KindOrganism, true
	}
	if a.predMapper.HasAll(e) {
		return components.KindPredator, true
	}
	return 0, false
}
