package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/game"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params         *ParamVector
	maxGenerations int
	seeds          []int64
	baseConfig     *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxGenerations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:         params,
		maxGenerations: maxGenerations,
		seeds:          seeds,
		baseConfig:     baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// qualityWarmup generations are ignored when scoring population stability.
const qualityWarmup = 5

// runResult holds the results from a single simulation run.
type runResult struct {
	survival  int // generations with both species alive
	organisms []float64
	predators []float64
	err       error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival: more generations with both species alive is better.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		if r.err != nil {
			slog.Warn("evaluation run failed", "error", r.err)
		}
		quality := computeQuality(r.organisms, r.predators)
		totalFitness += computeFitness(r.survival, quality)
		totalQuality += quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until either species is gone
// or the generation cap is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.configFor(x, seed)

	sim, err := game.NewSimulation(cfg, game.Options{
		RunID:  "optimize",
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return runResult{err: err}
	}
	defer sim.Close()

	var r runResult
	for sim.Generation() < fe.maxGenerations {
		if err := sim.Step(); err != nil {
			r.err = err
			break
		}
		orgs, preds := sim.Agents().LivingCounts()
		if orgs == 0 || preds == 0 {
			break
		}
		r.survival = sim.Generation()
		r.organisms = append(r.organisms, float64(orgs))
		r.predators = append(r.predators, float64(preds))
	}
	return r
}

// configFor returns a private copy of the base config with x applied.
// Telemetry sinks are disabled so parallel runs never share files.
func (fe *FitnessEvaluator) configFor(x []float64, seed int64) *config.Config {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Simulation.Seed = seed
	cfg.Simulation.GenerationLimit = fe.maxGenerations
	cfg.Output = config.OutputConfig{}
	return cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to 20% to separate configs with equal survival.
func computeFitness(survival int, quality float64) float64 {
	return -(float64(survival) * (1.0 + 0.2*quality))
}

// computeQuality scores population stability in [0, 1] from per-generation counts.
// Low coefficients of variation for both species score close to 1.
func computeQuality(organisms, predators []float64) float64 {
	if len(organisms) <= qualityWarmup+1 {
		return 0
	}
	cvOrg := cv(organisms[qualityWarmup:])
	cvPred := cv(predators[qualityWarmup:])
	return clamp01(math.Exp(-(cvOrg*cvOrg + cvPred*cvPred)))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
