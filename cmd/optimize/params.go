// Package main provides CMA-ES optimization for habitat simulation parameters.
package main

import (
	"github.com/pthm-cable/habitat/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(cfg *config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food economy (water never regenerates, so it is not tuned)
			{Name: "forest_food_regen", Path: "biomes.forest.food_regen", Min: 0.2, Max: 5.0, Default: 1.0,
				field: func(c *config.Config) *float64 { return &c.Biomes.Forest.FoodRegen }},
			{Name: "desert_food_regen", Path: "biomes.desert.food_regen", Min: 0.0, Max: 3.0, Default: 1.0,
				field: func(c *config.Config) *float64 { return &c.Biomes.Desert.FoodRegen }},
			{Name: "grassland_food_regen", Path: "biomes.grassland.food_regen", Min: 0.2, Max: 5.0, Default: 1.0,
				field: func(c *config.Config) *float64 { return &c.Biomes.Grassland.FoodRegen }},
			// Organisms
			{Name: "org_mutability", Path: "organism.mutability", Min: 0.01, Max: 0.5, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Organism.Mutability }},
			{Name: "org_move_cost", Path: "organism.move_cost", Min: 0.01, Max: 1.0, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Organism.MoveCost }},
			{Name: "org_repro_thresh", Path: "organism.reproduction_threshold", Min: 20, Max: 300, Default: 100,
				field: func(c *config.Config) *float64 { return &c.Organism.ReproductionThreshold }},
			// Predators
			{Name: "pred_mutability", Path: "predator.mutability", Min: 0.01, Max: 0.5, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Predator.Mutability }},
			{Name: "pred_hunting_eff", Path: "predator.hunting_efficiency", Min: 0.1, Max: 3.0, Default: 1.0,
				field: func(c *config.Config) *float64 { return &c.Predator.HuntingEfficiency }},
			{Name: "pred_satiation", Path: "predator.satiation_threshold", Min: 20, Max: 500, Default: 100,
				field: func(c *config.Config) *float64 { return &c.Predator.SatiationThreshold }},
			{Name: "pred_repro_thresh", Path: "predator.reproduction_threshold", Min: 20, Max: 500, Default: 100,
				field: func(c *config.Config) *float64 { return &c.Predator.ReproductionThreshold }},
			{Name: "pred_energy_decay", Path: "predator.energy_decay_rate", Min: 0.05, Max: 5.0, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Predator.EnergyDecayRate }},
			// Simulation
			{Name: "speed_bias", Path: "simulation.speed_bias", Min: 0.0, Max: 0.3, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Simulation.SpeedBias }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig reads the current parameter values out of cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
