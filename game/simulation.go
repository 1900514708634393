// Package game drives the ecosystem: it owns the grid, the agent store and the stage pipeline.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/systems"
	"github.com/pthm-cable/habitat/telemetry"
	"github.com/pthm-cable/habitat/world"
)

// State is the run state of a simulation.
type State uint8

const (
	StateSimulating State = iota
	StateFinished
)

// String returns the display name for a State.
func (s State) String() string {
	if s == StateFinished {
		return "finished"
	}
	return "simulating"
}

// Options holds optional hooks and identifiers for a simulation.
type Options struct {
	RunID  string       // empty = generate a fresh one
	Logger *slog.Logger // nil = slog.Default()

	// OnGeneration is called with the stats of every completed generation.
	OnGeneration func(telemetry.GenerationStats)

	PerfWindow int // generations averaged by the perf collector
}

// Simulation holds the complete ecosystem state.
type Simulation struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	world *ecs.World
	grid  *world.World
	ctx   *systems.Context

	stages   *systems.StageRegistry
	pipeline []stage

	movement   *systems.MovementSystem
	feeding    *systems.FeedingSystem
	adaptation *systems.AdaptationSystem
	predation  *systems.PredationSystem
	population *systems.PopulationSystem
	breeding   *systems.BreedingSystem

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager
	store     *telemetry.StatsStore

	onGeneration func(telemetry.GenerationStats)

	generation int
	state      State
	closed     bool
}

type stage struct {
	id  string
	run func()
}

// NewSimulation generates the world, spawns the initial population and opens
// the telemetry sinks enabled in cfg.Output. The config is copied.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := opts.RunID
	if runID == "" {
		runID = telemetry.NewRunID()
	}

	grid, err := world.New(cfg.World.Width, cfg.World.Height, cfg.Simulation.Seed, world.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("generating world: %w", err)
	}

	w, h := cfg.World.Width, cfg.World.Height
	ecsWorld := ecs.NewWorld()
	collector := telemetry.NewCollector(runID)

	s := &Simulation{
		cfg:          cfg,
		logger:       logger,
		runID:        runID,
		world:        ecsWorld,
		grid:         grid,
		ctx:          systems.NewContext(ecsWorld, grid, cfg, logger, collector),
		stages:       systems.NewStageRegistry(),
		movement:     systems.NewMovementSystem(w, h),
		feeding:      systems.NewFeedingSystem(w, h),
		adaptation:   systems.NewAdaptationSystem(),
		predation:    systems.NewPredationSystem(w, h),
		population:   systems.NewPopulationSystem(w, h),
		breeding:     systems.NewBreedingSystem(),
		collector:    collector,
		perf:         telemetry.NewPerfCollector(opts.PerfWindow),
		bookmarks:    telemetry.NewBookmarkDetector(20),
		onGeneration: opts.OnGeneration,
	}

	if err := s.buildPipeline(); err != nil {
		return nil, err
	}

	s.spawnInitialPopulation()

	if err := s.openTelemetry(); err != nil {
		s.Close()
		return nil, err
	}

	orgs, preds := s.Counts()
	attrs := []any{
		"run_id", runID,
		"seed", cfg.Simulation.Seed,
		"width", w,
		"height", h,
		"organisms", orgs,
		"predators", preds,
	}
	for b, n := range grid.BiomeCounts() {
		attrs = append(attrs, strings.ToLower(world.Biome(b).String())+"_tiles", n)
	}
	logger.Info("simulation initialized", attrs...)

	return s, nil
}

// buildPipeline binds every registered stage ID to the system that runs it.
func (s *Simulation) buildPipeline() error {
	ctx := s.ctx
	runners := map[string]func(){
		systems.StagePredation:        func() { s.predation.Update(ctx) },
		systems.StageOrganismMovement: func() { s.movement.MoveOrganisms(ctx) },
		systems.StagePredatorMovement: func() { s.movement.MovePredators(ctx) },
		systems.StageDespawn:          func() { s.population.Despawn(ctx) },
		systems.StageRegeneration:     func() { s.feeding.Regenerate(ctx) },
		systems.StageConsumption:      func() { s.feeding.Consume(ctx) },
		systems.StageOvercrowding:     func() { s.population.Overcrowding(ctx) },
		systems.StageAdaptation:       func() { s.adaptation.Update(ctx) },
		systems.StageOrganismBreeding: func() { s.breeding.BreedOrganisms(ctx) },
		systems.StagePredatorBreeding: func() { s.breeding.BreedPredators(ctx) },
		systems.StagePopulationCap:    func() { s.population.EnforceCap(ctx) },
	}

	for _, info := range s.stages.All() {
		run, ok := runners[info.ID]
		if !ok {
			return fmt.Errorf("stage %q has no runner", info.ID)
		}
		s.pipeline = append(s.pipeline, stage{id: info.ID, run: run})
		s.logger.Debug("stage registered", "id", info.ID, "name", info.Name, "category", info.Category)
	}
	return nil
}

// Step advances the simulation by one generation.
// Telemetry write failures are returned and leave the generation counted.
func (s *Simulation) Step() error {
	if s.state == StateFinished {
		return nil
	}

	s.perf.StartTick()
	for _, st := range s.pipeline {
		s.perf.StartPhase(st.id)
		st.run()
	}
	s.generation++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	err := s.flushTelemetry()
	s.perf.EndTick()
	if err != nil {
		return fmt.Errorf("generation %d: %w", s.generation, err)
	}

	if s.cfg.HasGenerationLimit() && s.generation >= s.cfg.Simulation.GenerationLimit {
		s.state = StateFinished
		s.logger.Info("generation limit reached", "generation", s.generation)
	}
	return nil
}

// Run steps until the generation limit is reached or ctx is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	for s.state != StateFinished {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the stats store and closes all telemetry sinks. Safe to call twice.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.store != nil {
		if err := s.store.FinishRun(s.runID, s.generation); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.output.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Generation returns the number of completed generations.
func (s *Simulation) Generation() int { return s.generation }

// State returns the run state.
func (s *Simulation) State() State { return s.state }

// RunID returns the identifier stamped on this run's records.
func (s *Simulation) RunID() string { return s.runID }

// Config returns the simulation's private copy of the configuration.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Grid returns the live grid. Callers must not mutate it.
func (s *Simulation) Grid() *world.World { return s.grid }

// Agents returns the agent store.
func (s *Simulation) Agents() *systems.Agents { return s.ctx.Agents }

// Counts returns the number of stored organisms and predators.
func (s *Simulation) Counts() (organisms, predators int) {
	return s.ctx.Agents.Counts()
}

// PerfStats returns timing statistics over the recent generations.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}

// OutputSizes reports the size of every open log file.
func (s *Simulation) OutputSizes() []telemetry.FileSize {
	return s.output.Sizes()
}
