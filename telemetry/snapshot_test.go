package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

func testSnapshot(gen int) *Snapshot {
	var tol components.BiomeTolerance
	for i := range tol {
		tol[i] = 0.5
	}
	tol[world.Grassland] = 1.2

	grid := testGrid(10, 20)
	grid.Tiles[1].Biome = world.Water

	return &Snapshot{
		RunID:      "run-snap",
		Generation: gen,
		Config:     config.Default(),
		World:      grid,
		Organisms: []OrganismRecord{{
			Organism: components.Organism{Energy: 12, Speed: 1, Size: 2, ReproductionThreshold: 100, ReproductionCooldown: 3, Tolerance: tol},
			Position: components.Position{X: 1, Y: 0},
		}},
		Predators: []PredatorRecord{{
			Predator: components.Predator{Energy: 40, Speed: 1, Size: 3, HuntingEfficiency: 1, SatiationThreshold: 90},
			Position: components.Position{X: 0, Y: 0},
		}},
	}
}

func TestSnapshotWriteRead(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(config.OutputConfig{LogData: true, Dir: dir})
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for gen := 1; gen <= 3; gen++ {
		if err := om.WriteSnapshot(testSnapshot(gen)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	snaps, err := ReadSnapshots(filepath.Join(dir, WorldDataFile))
	if err != nil {
		t.Fatalf("ReadSnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("read %d snapshots, want 3", len(snaps))
	}

	got := snaps[2]
	if got.Generation != 3 || got.RunID != "run-snap" {
		t.Errorf("header = (%d, %q), want (3, run-snap)", got.Generation, got.RunID)
	}
	if got.World.Tiles[1].Biome != world.Water {
		t.Errorf("tile biome = %v, want Water", got.World.Tiles[1].Biome)
	}
	if got.Config.World.Width != config.Default().World.Width {
		t.Error("config not carried through the snapshot")
	}

	org := got.Organisms[0]
	if org.Position != (components.Position{X: 1, Y: 0}) || org.Organism.Tolerance.For(world.Grassland) != 1.2 {
		t.Errorf("organism record = %+v", org)
	}

	pop := got.Population()
	if len(pop.Organisms) != 1 || len(pop.Predators) != 1 || pop.Predators[0].Energy != 40 {
		t.Errorf("population = %+v", pop)
	}
}

func TestSnapshotLogTruncatedOnOpen(t *testing.T) {
	dir := t.TempDir()

	for run := 0; run < 2; run++ {
		om, err := NewOutputManager(config.OutputConfig{LogData: true, Dir: dir})
		if err != nil {
			t.Fatalf("NewOutputManager: %v", err)
		}
		if err := om.WriteSnapshot(testSnapshot(run)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
		om.Close()
	}

	snaps, err := ReadSnapshots(filepath.Join(dir, WorldDataFile))
	if err != nil {
		t.Fatalf("ReadSnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Generation != 1 {
		t.Errorf("snapshot log holds %d records, want only the second run's", len(snaps))
	}
}

func TestReadSnapshots_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"generation\": 1}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadSnapshots(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want a line 2 error", err)
	}
}

func TestReadSnapshots_Missing(t *testing.T) {
	if _, err := ReadSnapshots(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
