package systems

import (
	"testing"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

func TestPredation_HungryPredatorEats(t *testing.T) {
	ctx, rec := newTestContext(t, 5, 5, world.Grassland, nil)

	pred := testPredator(50)
	pred.SatiationThreshold = 100
	pred.HuntingEfficiency = 1
	hunter := ctx.Agents.SpawnPredator(components.Position{X: 2, Y: 2}, pred)

	prey := testOrganism(30)
	prey.Size = 10
	victim := ctx.Agents.SpawnOrganism(components.Position{X: 2, Y: 2}, prey)

	kills := NewPredationSystem(5, 5).Update(ctx)
	if kills != 1 {
		t.Fatalf("kills = %d, want 1", kills)
	}

	_, p := ctx.Agents.Predator(hunter)
	if p.Energy != 60 {
		t.Errorf("predator energy = %v, want 60", p.Energy)
	}
	if ctx.Agents.World().Alive(victim) {
		t.Error("prey still present after being eaten")
	}
	if rec.kills != 1 || rec.deaths != 1 {
		t.Errorf("recorded kills=%d deaths=%d, want 1 and 1", rec.kills, rec.deaths)
	}
}

func TestPredation_EnergyCapped(t *testing.T) {
	ctx, _ := newTestContext(t, 3, 3, world.Forest, func(c *config.Config) {
		c.Predator.MaxEnergy = 55
	})

	hunter := ctx.Agents.SpawnPredator(components.Position{X: 1, Y: 1}, testPredator(50))
	prey := testOrganism(10)
	prey.Size = 10
	ctx.Agents.SpawnOrganism(components.Position{X: 1, Y: 1}, prey)

	NewPredationSystem(3, 3).Update(ctx)

	if _, p := ctx.Agents.Predator(hunter); p.Energy != 55 {
		t.Errorf("predator energy = %v, want capped at 55", p.Energy)
	}
}

func TestPredation_SatedPredatorIgnoresPrey(t *testing.T) {
	ctx, _ := newTestContext(t, 3, 3, world.Forest, nil)

	pred := testPredator(100) // at threshold counts as sated
	ctx.Agents.SpawnPredator(components.Position{X: 0, Y: 0}, pred)
	ctx.Agents.SpawnOrganism(components.Position{X: 0, Y: 0}, testOrganism(10))

	if kills := NewPredationSystem(3, 3).Update(ctx); kills != 0 {
		t.Errorf("kills = %d, want 0", kills)
	}
}

func TestPredation_OneKillPerPredator(t *testing.T) {
	ctx, _ := newTestContext(t, 3, 3, world.Forest, nil)

	ctx.Agents.SpawnPredator(components.Position{X: 1, Y: 1}, testPredator(10))
	for i := 0; i < 3; i++ {
		ctx.Agents.SpawnOrganism(components.Position{X: 1, Y: 1}, testOrganism(10))
	}

	if kills := NewPredationSystem(3, 3).Update(ctx); kills != 1 {
		t.Errorf("kills = %d, want 1", kills)
	}
	if orgs, _ := ctx.Agents.Counts(); orgs != 2 {
		t.Errorf("organisms left = %d, want 2", orgs)
	}
}

func TestPredation_PreyEatenOnce(t *testing.T) {
	ctx, _ := newTestContext(t, 3, 3, world.Forest, nil)

	a := ctx.Agents.SpawnPredator(components.Position{X: 2, Y: 0}, testPredator(10))
	b := ctx.Agents.SpawnPredator(components.Position{X: 2, Y: 0}, testPredator(10))
	ctx.Agents.SpawnOrganism(components.Position{X: 2, Y: 0}, testOrganism(10))

	if kills := NewPredationSystem(3, 3).Update(ctx); kills != 1 {
		t.Fatalf("kills = %d, want 1", kills)
	}

	_, pa := ctx.Agents.Predator(a)
	_, pb := ctx.Agents.Predator(b)
	if pa.Energy+pb.Energy != 21 {
		t.Errorf("combined predator energy = %v, want 21 (one meal)", pa.Energy+pb.Energy)
	}
}

func TestPredation_DeadPredatorDoesNotHunt(t *testing.T) {
	ctx, _ := newTestContext(t, 3, 3, world.Forest, nil)

	ctx.Agents.SpawnPredator(components.Position{X: 1, Y: 2}, testPredator(-1))
	ctx.Agents.SpawnOrganism(components.Position{X: 1, Y: 2}, testOrganism(10))

	if kills := NewPredationSystem(3, 3).Update(ctx); kills != 0 {
		t.Errorf("kills = %d, want 0", kills)
	}
}
