package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/game"
	"github.com/pthm-cable/habitat/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides simulation.seed when set)")
	generations := flag.Int("generations", -1, "Stop after N generations (0 = unlimited, -1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for logs (empty = use config)")
	statsDB := flag.String("stats-db", "", "SQLite stats database path (empty = use config)")
	logData := flag.Bool("log-data", false, "Write per-generation world snapshots")
	logStats := flag.Bool("log-stats", false, "Write per-generation summary stats")
	printing := flag.Bool("print", false, "Log per-generation stats and verbose events")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Simulation.Seed = *seed
		case "generations":
			cfg.Simulation.GenerationLimit = *generations
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "stats-db":
			cfg.Output.StatsDB = *statsDB
		case "log-data":
			cfg.Output.LogData = *logData
		case "log-stats":
			cfg.Output.LogStats = *logStats
		case "print":
			cfg.Output.Printing = *printing
		}
	})

	logger := newLogger(cfg.Output.Printing)
	slog.SetDefault(logger)

	opts := game.Options{
		Logger:       logger,
		OnGeneration: progressPrinter(os.Stdout, cfg),
	}

	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		logger.Error("failed to start simulation", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting simulation",
		"run_id", sim.RunID(),
		"seed", cfg.Simulation.Seed,
		"generation_limit", cfg.Simulation.GenerationLimit,
	)

	start := time.Now()
	runErr := sim.Run(ctx)
	elapsed := time.Since(start)

	code := 0
	switch {
	case errors.Is(runErr, context.Canceled):
		logger.Info("interrupted", "generation", sim.Generation())
	case runErr != nil:
		logger.Error("simulation failed", "error", runErr)
		code = 1
	}

	summarize(logger, sim, elapsed)

	if err := sim.Close(); err != nil {
		logger.Error("failed to close telemetry", "error", err)
		code = 1
	}
	return code
}

// newLogger returns a text handler on a terminal and JSON otherwise.
// Printing mode lowers the level so per-stage events are visible.
func newLogger(verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// progressPrinter writes one human-readable line per generation to w.
func progressPrinter(w io.Writer, cfg *config.Config) func(telemetry.GenerationStats) {
	limit := "∞"
	if cfg.HasGenerationLimit() {
		limit = humanize.Comma(int64(cfg.Simulation.GenerationLimit))
	}
	return func(s telemetry.GenerationStats) {
		fmt.Fprintf(w, "Generation: %s / %s, Total entities: %s, Organisms: %s, Predators: %s\n",
			humanize.Comma(int64(s.Generation)),
			limit,
			humanize.Comma(int64(s.OrganismCount+s.PredatorCount)),
			humanize.Comma(int64(s.OrganismCount)),
			humanize.Comma(int64(s.PredatorCount)),
		)
	}
}

func summarize(logger *slog.Logger, sim *game.Simulation, elapsed time.Duration) {
	orgs, preds := sim.Counts()

	attrs := []any{
		"generations", sim.Generation(),
		"organisms", orgs,
		"predators", preds,
		"elapsed", elapsed.Round(time.Millisecond).String(),
	}
	for _, f := range sim.OutputSizes() {
		attrs = append(attrs, f.Name, humanize.Bytes(f.Bytes))
	}
	logger.Info("run complete", attrs...)
	sim.PerfStats().LogStats(logger)
}
