package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

func TestTileIndex_Nearest(t *testing.T) {
	w := ecs.NewWorld()
	agents := NewAgents(w)
	org := testOrganism(1)

	far := agents.SpawnOrganism(components.Position{X: 4, Y: 4}, org)
	first := agents.SpawnOrganism(components.Position{X: 1, Y: 2}, org)
	second := agents.SpawnOrganism(components.Position{X: 2, Y: 1}, org)

	ix := NewTileIndex(5, 5)
	ix.Insert(far, components.Position{X: 4, Y: 4})
	ix.Insert(first, components.Position{X: 1, Y: 2})
	ix.Insert(second, components.Position{X: 2, Y: 1})

	got, ok := ix.Nearest(components.Position{X: 2, Y: 2}, 1)
	if !ok {
		t.Fatal("expected a neighbor within range")
	}
	if got.E != first {
		t.Errorf("nearest = %v, want the first inserted of two equidistant agents", got.E)
	}

	if _, ok := ix.Nearest(components.Position{X: 0, Y: 4}, 1); ok {
		t.Error("found a neighbor outside range")
	}
}

func TestTileIndex_OutOfBoundsIgnored(t *testing.T) {
	ix := NewTileIndex(2, 2)
	ix.Insert(ecs.Entity{}, components.Position{X: -1, Y: 0})
	ix.Insert(ecs.Entity{}, components.Position{X: 0, Y: 2})

	count := 0
	ix.Each(func(x, y int, occupants []Occupant) { count += len(occupants) })
	if count != 0 {
		t.Errorf("indexed %d out-of-bounds agents", count)
	}
	if ix.At(5, 5) != nil {
		t.Error("At outside the grid should be nil")
	}
}

func TestTileIndex_Crowded(t *testing.T) {
	ix := NewTileIndex(3, 3)
	for i := 0; i < 4; i++ {
		ix.Insert(ecs.Entity{}, components.Position{X: 1, Y: 1})
	}
	ix.Insert(ecs.Entity{}, components.Position{X: 0, Y: 0})

	cells := 0
	ix.Crowded(2, func(occupants []Occupant) {
		cells++
		if len(occupants) != 4 {
			t.Errorf("crowded cell has %d occupants, want 4", len(occupants))
		}
	})
	if cells != 1 {
		t.Errorf("crowded cells = %d, want 1", cells)
	}
}

func TestStageRegistry_Order(t *testing.T) {
	reg := NewStageRegistry()
	want := []string{
		StagePredation,
		StageOrganismMovement,
		StagePredatorMovement,
		StageDespawn,
		StageRegeneration,
		StageConsumption,
		StageOvercrowding,
		StageAdaptation,
		StageOrganismBreeding,
		StagePredatorBreeding,
		StagePopulationCap,
	}

	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("registered %d stages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, got[i], want[i])
		}
	}

	population := 0
	for _, info := range reg.All() {
		if info.Name == "" || info.Category == "" {
			t.Errorf("stage %q missing name or category", info.ID)
		}
		if info.Category == "population" {
			population++
		}
	}
	if population != 3 {
		t.Errorf("population stages = %d, want 3", population)
	}
}

func TestContext_ReseedRepeatsStream(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 2, world.Forest, func(c *config.Config) {
		c.Simulation.ReseedEachStage = true
		c.Simulation.Seed = 42
	})
	a := ctx.Rand().Int63()
	b := ctx.Rand().Int63()
	if a != b {
		t.Errorf("reseed mode produced different draws: %d vs %d", a, b)
	}

	ctx, _ = newTestContext(t, 2, 2, world.Forest, func(c *config.Config) {
		c.Simulation.Seed = 42
	})
	a = ctx.Rand().Int63()
	b = ctx.Rand().Int63()
	if a == b {
		t.Error("persistent stream repeated a draw")
	}
}
