package game

import (
	"fmt"

	"github.com/pthm-cable/habitat/telemetry"
)

// openTelemetry opens the log files and stats store enabled in the output config.
func (s *Simulation) openTelemetry() error {
	out := s.cfg.Output

	om, err := telemetry.NewOutputManager(out)
	if err != nil {
		return err
	}
	s.output = om
	if err := s.output.WriteConfig(s.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if out.StatsDB != "" {
		store, err := telemetry.OpenStatsStore(out.StatsDB)
		if err != nil {
			return err
		}
		s.store = store
		if err := store.BeginRun(s.runID, s.cfg); err != nil {
			return err
		}
	}

	if om != nil {
		s.logger.Info("telemetry output enabled", "dir", om.Dir(), "log_data", out.LogData, "log_stats", out.LogStats)
	}
	return nil
}

// flushTelemetry closes out the generation: it computes stats, writes the enabled
// logs, checks for bookmarks and notifies the generation hook.
func (s *Simulation) flushTelemetry() error {
	pop, orgs, preds := s.sample()
	stats := s.collector.Flush(s.generation, pop, s.grid)

	if s.cfg.Output.LogData {
		snap := &telemetry.Snapshot{
			RunID:      s.runID,
			Generation: s.generation,
			Config:     s.cfg,
			World:      s.grid,
			Organisms:  orgs,
			Predators:  preds,
		}
		if err := s.output.WriteSnapshot(snap); err != nil {
			return err
		}
	}

	if s.cfg.Output.LogStats {
		if err := s.output.WriteStats(stats); err != nil {
			return err
		}
		if err := s.output.WritePerf(s.perf.Stats(), s.generation); err != nil {
			return err
		}
	}

	if s.store != nil {
		if err := s.store.Record(stats); err != nil {
			return fmt.Errorf("recording stats: %w", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		bm.LogBookmark(s.logger)
		if err := s.output.WriteBookmark(bm); err != nil {
			return err
		}
	}

	if s.cfg.Output.Printing {
		stats.LogStats(s.logger)
	} else {
		s.logger.Debug("generation complete", "stats", stats)
	}

	if s.onGeneration != nil {
		s.onGeneration(stats)
	}
	return nil
}
