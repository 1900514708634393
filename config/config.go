// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Noise source names accepted by WorldConfig.Noise.
const (
	NoisePerlin  = "perlin"
	NoiseSimplex = "simplex"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world" json:"world"`
	Biomes     BiomesConfig     `yaml:"biomes" json:"biomes"`
	Organism   OrganismConfig   `yaml:"organism" json:"organism"`
	Predator   PredatorConfig   `yaml:"predator" json:"predator"`
	Population PopulationConfig `yaml:"population" json:"population"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Output     OutputConfig     `yaml:"output" json:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" json:"-"`
}

// WorldConfig holds grid dimensions and terrain generation parameters.
type WorldConfig struct {
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	Noise      string  `yaml:"noise" json:"noise"`             // perlin or simplex
	NoiseScale float64 `yaml:"noise_scale" json:"noise_scale"` // grid cells per noise unit
}

// BiomeConfig holds food economy parameters for one biome.
type BiomeConfig struct {
	FoodRegen float64 `yaml:"food_regen" json:"food_regen"` // food added per tick below the cap
	MaxFood   float64 `yaml:"max_food" json:"max_food"`     // regeneration stops above this
}

// BiomesConfig holds per-biome food parameters.
// Water never regenerates regardless of its values.
type BiomesConfig struct {
	Forest    BiomeConfig `yaml:"forest" json:"forest"`
	Desert    BiomeConfig `yaml:"desert" json:"desert"`
	Water     BiomeConfig `yaml:"water" json:"water"`
	Grassland BiomeConfig `yaml:"grassland" json:"grassland"`
}

// OrganismConfig holds forager parameters.
type OrganismConfig struct {
	InitialCount          int     `yaml:"initial_count" json:"initial_count"`
	InitialEnergy         float64 `yaml:"initial_energy" json:"initial_energy"`
	Speed                 float64 `yaml:"speed" json:"speed"`
	Size                  float64 `yaml:"size" json:"size"`
	ReproductionThreshold float64 `yaml:"reproduction_threshold" json:"reproduction_threshold"`
	ReproductionCooldown  float64 `yaml:"reproduction_cooldown" json:"reproduction_cooldown"`
	Mutability            float64 `yaml:"mutability" json:"mutability"`
	OvercrowdingThreshold int     `yaml:"overcrowding_threshold" json:"overcrowding_threshold"`
	MoveCost              float64 `yaml:"move_cost" json:"move_cost"` // energy per unit speed*size per step
}

// PredatorConfig holds predator parameters.
type PredatorConfig struct {
	InitialCount          int     `yaml:"initial_count" json:"initial_count"`
	InitialEnergy         float64 `yaml:"initial_energy" json:"initial_energy"`
	Speed                 float64 `yaml:"speed" json:"speed"`
	Size                  float64 `yaml:"size" json:"size"`
	ReproductionThreshold float64 `yaml:"reproduction_threshold" json:"reproduction_threshold"`
	ReproductionCooldown  float64 `yaml:"reproduction_cooldown" json:"reproduction_cooldown"`
	Mutability            float64 `yaml:"mutability" json:"mutability"`
	OvercrowdingThreshold int     `yaml:"overcrowding_threshold" json:"overcrowding_threshold"`
	HuntingEfficiency     float64 `yaml:"hunting_efficiency" json:"hunting_efficiency"`
	SatiationThreshold    float64 `yaml:"satiation_threshold" json:"satiation_threshold"`
	MaxEnergy             float64 `yaml:"max_energy" json:"max_energy"`
	EnergyDecayRate       float64 `yaml:"energy_decay_rate" json:"energy_decay_rate"`
}

// PopulationConfig holds global population limits.
type PopulationConfig struct {
	MaxTotalEntities int `yaml:"max_total_entities" json:"max_total_entities"`
}

// SimulationConfig holds run control parameters.
type SimulationConfig struct {
	Seed            int64 `yaml:"seed" json:"seed"`
	GenerationLimit int   `yaml:"generation_limit" json:"generation_limit"` // 0 = run forever
	// ReseedEachStage restarts the random stream from Seed at every stage
	// invocation instead of advancing one stream across the run.
	ReseedEachStage bool    `yaml:"reseed_each_stage" json:"reseed_each_stage"`
	SpeedBias       float64 `yaml:"speed_bias" json:"speed_bias"` // added to the speed mutation factor
}

// OutputConfig holds logging and telemetry switches.
type OutputConfig struct {
	LogData  bool   `yaml:"log_data" json:"log_data"`   // per-generation snapshot JSONL
	LogStats bool   `yaml:"log_stats" json:"log_stats"` // aggregated stats JSONL + CSV
	Printing bool   `yaml:"printing" json:"printing"`   // progress line and verbose events
	Dir      string `yaml:"dir" json:"dir"`             // output directory for log files
	StatsDB  string `yaml:"stats_db" json:"stats_db"`   // optional SQLite stats database
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells int // World.Width * World.Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every parameter that would make the simulation ill-defined.
func (c *Config) Validate() error {
	var errs []error

	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height))
	}
	if c.World.NoiseScale <= 0 {
		errs = append(errs, fmt.Errorf("world.noise_scale must be positive, got %v", c.World.NoiseScale))
	}
	switch c.World.Noise {
	case NoisePerlin, NoiseSimplex:
	default:
		errs = append(errs, fmt.Errorf("world.noise must be %q or %q, got %q", NoisePerlin, NoiseSimplex, c.World.Noise))
	}

	biomes := map[string]BiomeConfig{
		"forest":    c.Biomes.Forest,
		"desert":    c.Biomes.Desert,
		"water":     c.Biomes.Water,
		"grassland": c.Biomes.Grassland,
	}
	for name, b := range biomes {
		if b.FoodRegen < 0 || b.MaxFood < 0 {
			errs = append(errs, fmt.Errorf("biomes.%s: food values must be non-negative", name))
		}
	}

	if c.Organism.InitialCount < 0 || c.Predator.InitialCount < 0 {
		errs = append(errs, errors.New("initial counts must be non-negative"))
	}
	if c.Organism.Mutability < 0 || c.Organism.Mutability >= 1 {
		errs = append(errs, fmt.Errorf("organism.mutability must be in [0,1), got %v", c.Organism.Mutability))
	}
	if c.Predator.Mutability < 0 || c.Predator.Mutability >= 1 {
		errs = append(errs, fmt.Errorf("predator.mutability must be in [0,1), got %v", c.Predator.Mutability))
	}
	if c.Organism.Size <= 0 || c.Organism.Speed <= 0 || c.Predator.Size <= 0 || c.Predator.Speed <= 0 {
		errs = append(errs, errors.New("initial size and speed must be positive"))
	}
	if c.Organism.OvercrowdingThreshold < 0 || c.Predator.OvercrowdingThreshold < 0 {
		errs = append(errs, errors.New("overcrowding thresholds must be non-negative"))
	}
	if c.Predator.MaxEnergy <= 0 {
		errs = append(errs, fmt.Errorf("predator.max_energy must be positive, got %v", c.Predator.MaxEnergy))
	}
	if c.Population.MaxTotalEntities <= 0 {
		errs = append(errs, fmt.Errorf("population.max_total_entities must be positive, got %d", c.Population.MaxTotalEntities))
	}
	if c.Simulation.GenerationLimit < 0 {
		errs = append(errs, fmt.Errorf("simulation.generation_limit must be non-negative, got %d", c.Simulation.GenerationLimit))
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.World.Width * c.World.Height
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}

// HasGenerationLimit reports whether the run stops after a fixed number of generations.
func (c *Config) HasGenerationLimit() bool {
	return c.Simulation.GenerationLimit > 0
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
