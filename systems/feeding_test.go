package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

func TestConsume_LargestEatsFirst(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 2, world.Grassland, nil)
	ctx.Grid.At(0, 0).Food = 1

	small := testOrganism(10)
	small.Size = 1
	large := testOrganism(10)
	large.Size = 5 // needs exactly 1.0

	smallE := ctx.Agents.SpawnOrganism(components.Position{X: 0, Y: 0}, small)
	largeE := ctx.Agents.SpawnOrganism(components.Position{X: 0, Y: 0}, large)

	NewFeedingSystem(2, 2).Consume(ctx)

	_, s := ctx.Agents.Organism(smallE)
	_, l := ctx.Agents.Organism(largeE)
	if l.Energy != 12 {
		t.Errorf("large energy = %v, want 12", l.Energy)
	}
	if s.Energy != 10 {
		t.Errorf("small energy = %v, want 10 (tile exhausted)", s.Energy)
	}
	if food := ctx.Grid.At(0, 0).Food; food != 0 {
		t.Errorf("tile food = %v, want 0", food)
	}
}

func TestConsume_PartialMeal(t *testing.T) {
	ctx, _ := newTestContext(t, 1, 1, world.Forest, nil)
	ctx.Grid.At(0, 0).Food = 0.05

	e := ctx.Agents.SpawnOrganism(components.Position{}, testOrganism(1))

	eaten := NewFeedingSystem(1, 1).Consume(ctx)

	_, org := ctx.Agents.Organism(e)
	if math.Abs(float64(org.Energy)-1.1) > 1e-5 {
		t.Errorf("energy = %v, want 1.1", org.Energy)
	}
	if math.Abs(eaten-0.05) > 1e-6 {
		t.Errorf("eaten = %v, want 0.05", eaten)
	}
}

func TestConsume_SkipsNegativeFoodAndDead(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 1, world.Forest, nil)
	ctx.Grid.At(0, 0).Food = -3

	a := ctx.Agents.SpawnOrganism(components.Position{X: 0, Y: 0}, testOrganism(5))
	dead := ctx.Agents.SpawnOrganism(components.Position{X: 1, Y: 0}, testOrganism(-1))

	NewFeedingSystem(2, 1).Consume(ctx)

	if _, org := ctx.Agents.Organism(a); org.Energy != 5 {
		t.Errorf("organism on negative-food tile ate: energy %v", org.Energy)
	}
	if _, org := ctx.Agents.Organism(dead); org.Energy != -1 {
		t.Errorf("dead organism ate: energy %v", org.Energy)
	}
	if food := ctx.Grid.At(1, 0).Food; food != 50 {
		t.Errorf("tile under dead organism lost food: %v", food)
	}
}

func TestRegenerate_SkipsWater(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 1, world.Water, nil)
	ctx.Grid.At(1, 0).Biome = world.Desert

	NewFeedingSystem(2, 1).Regenerate(ctx)

	if got := ctx.Grid.At(0, 0).Food; got != 50 {
		t.Errorf("water food = %v, want 50", got)
	}
	if got := ctx.Grid.At(1, 0).Food; got != 51 {
		t.Errorf("desert food = %v, want 51", got)
	}
}

func TestAdaptation(t *testing.T) {
	tests := []struct {
		biome world.Biome
		tol   float32
		want  float32
	}{
		{world.Forest, 2, 10.2},
		{world.Grassland, 2, 10.1},
		{world.Desert, 0.5, 9.8},
		{world.Water, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.biome.String(), func(t *testing.T) {
			ctx, _ := newTestContext(t, 1, 1, tt.biome, nil)
			org := testOrganism(10)
			org.Tolerance = uniformTolerance(tt.tol)
			e := ctx.Agents.SpawnOrganism(components.Position{}, org)

			NewAdaptationSystem().Update(ctx)

			_, got := ctx.Agents.Organism(e)
			if math.Abs(float64(got.Energy-tt.want)) > 1e-5 {
				t.Errorf("energy = %v, want %v", got.Energy, tt.want)
			}
		})
	}
}

func TestAdaptation_IgnoresPredators(t *testing.T) {
	ctx, _ := newTestContext(t, 1, 1, world.Water, nil)
	e := ctx.Agents.SpawnPredator(components.Position{}, testPredator(10))

	NewAdaptationSystem().Update(ctx)

	if _, p := ctx.Agents.Predator(e); p.Energy != 10 {
		t.Errorf("predator energy = %v, want 10", p.Energy)
	}
}
