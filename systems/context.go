package systems

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

// Context is the state threaded through every stage of a tick.
// Grid is mutated only by the feeding stages; agents only through Agents.
type Context struct {
	Agents   *Agents
	Grid     *world.World
	Biomes   world.BiomeTable
	Cfg      *config.Config
	Logger   *slog.Logger
	Recorder Recorder

	rng    *rand.Rand
	seed   int64
	reseed bool
}

// NewContext builds a stage context over an ECS world and a generated grid.
// A nil logger or recorder is replaced by a no-op.
func NewContext(w *ecs.World, grid *world.World, cfg *config.Config, logger *slog.Logger, rec Recorder) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rec == nil {
		rec = NopRecorder{}
	}
	seed := cfg.Simulation.Seed
	return &Context{
		Agents:   NewAgents(w),
		Grid:     grid,
		Biomes:   world.NewBiomeTable(cfg),
		Cfg:      cfg,
		Logger:   logger,
		Recorder: rec,
		rng:      rand.New(rand.NewSource(seed)),
		seed:     seed,
		reseed:   cfg.Simulation.ReseedEachStage,
	}
}

// Rand returns the random stream for one stage invocation.
// In reseed mode every call restarts from the configured seed, so two stages
// in the same tick draw identical sequences. Otherwise one stream advances across the run.
func (c *Context) Rand() *rand.Rand {
	if c.reseed {
		return rand.New(rand.NewSource(c.seed))
	}
	return c.rng
}

// Recorder receives lifecycle events from the stages.
type Recorder interface {
	RecordBirth(kind components.Kind)
	RecordDeath(kind components.Kind)
	RecordKill()
	RecordOvercrowded(kind components.Kind)
	RecordCapCull(kind components.Kind)
	RecordReproductionBlocked(kind components.Kind)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) RecordBirth(components.Kind)               {}
func (NopRecorder) RecordDeath(components.Kind)               {}
func (NopRecorder) RecordKill()                               {}
func (NopRecorder) RecordOvercrowded(components.Kind)         {}
func (NopRecorder) RecordCapCull(components.Kind)             {}
func (NopRecorder) RecordReproductionBlocked(components.Kind) {}
