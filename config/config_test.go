package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.World.Width != 10 || cfg.World.Height != 10 {
		t.Errorf("default world = %dx%d, want 10x10", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.Noise != NoisePerlin {
		t.Errorf("default noise = %q, want %q", cfg.World.Noise, NoisePerlin)
	}
	if cfg.Population.MaxTotalEntities != 1000 {
		t.Errorf("max_total_entities = %d, want 1000", cfg.Population.MaxTotalEntities)
	}
	if cfg.Derived.Cells != 100 {
		t.Errorf("derived cells = %d, want 100", cfg.Derived.Cells)
	}
}

func TestLoad_UserFileOverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := "world:\n  width: 32\npredator:\n  max_energy: 200\n"
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.World.Width != 32 {
		t.Errorf("width = %d, want 32", cfg.World.Width)
	}
	if cfg.World.Height != 10 {
		t.Errorf("height = %d, want default 10", cfg.World.Height)
	}
	if cfg.Predator.MaxEnergy != 200 {
		t.Errorf("max_energy = %v, want 200", cfg.Predator.MaxEnergy)
	}
	if cfg.Predator.EnergyDecayRate != 0.5 {
		t.Errorf("energy_decay_rate = %v, want default 0.5", cfg.Predator.EnergyDecayRate)
	}
	if cfg.Derived.Cells != 320 {
		t.Errorf("derived cells = %d, want 320", cfg.Derived.Cells)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }, "world size"},
		{"bad noise", func(c *Config) { c.World.Noise = "value" }, "world.noise"},
		{"mutability one", func(c *Config) { c.Organism.Mutability = 1 }, "organism.mutability"},
		{"negative predator mutability", func(c *Config) { c.Predator.Mutability = -0.1 }, "predator.mutability"},
		{"zero cap", func(c *Config) { c.Population.MaxTotalEntities = 0 }, "max_total_entities"},
		{"negative food", func(c *Config) { c.Biomes.Desert.MaxFood = -1 }, "biomes.desert"},
		{"negative limit", func(c *Config) { c.Simulation.GenerationLimit = -5 }, "generation_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	dup := cfg.Clone()
	dup.Organism.Mutability = 0.5

	if cfg.Organism.Mutability == 0.5 {
		t.Error("mutating clone changed the source config")
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Seed = 99
	cfg.World.Noise = NoiseSimplex

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Simulation.Seed != 99 || loaded.World.Noise != NoiseSimplex {
		t.Errorf("round trip lost values: seed=%d noise=%q", loaded.Simulation.Seed, loaded.World.Noise)
	}
}

func TestInitAndCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().World.Width != 10 {
		t.Errorf("Cfg().World.Width = %d, want 10", Cfg().World.Width)
	}
}
