package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntSurge        BookmarkType = "hunt_surge"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkOrganismCrash    BookmarkType = "organism_crash"
	BookmarkExtinction       BookmarkType = "extinction"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// stableWindow is how many generations of low variance make an ecosystem stable.
const stableWindow = 5

// Bookmark marks a notable generation.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector watches generation stats for population events worth flagging.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPredMin     int // minimum predator count since the last recovery
	recentOrgPeak     int // peak organism count since the last crash
	stableGenerations int // consecutive generations with stable populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindow {
		historySize = stableWindow
	}
	return &BookmarkDetector{
		history:       make([]GenerationStats, historySize),
		historySize:   historySize,
		recentPredMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(GenerationStats) *Bookmark{
			bd.checkExtinction,
			bd.checkHuntSurge,
			bd.checkPredatorRecovery,
			bd.checkOrganismCrash,
			bd.checkStableEcosystem,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if bd.recentPredMin < 0 || stats.PredatorCount < bd.recentPredMin {
		bd.recentPredMin = stats.PredatorCount
	}
	if stats.OrganismCount > bd.recentOrgPeak {
		bd.recentOrgPeak = stats.OrganismCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns recorded stats oldest first.
func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]GenerationStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) previous() GenerationStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkExtinction(stats GenerationStats) *Bookmark {
	prev := bd.previous()
	switch {
	case prev.OrganismCount > 0 && stats.OrganismCount == 0:
		return &Bookmark{
			Type:        BookmarkExtinction,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Organisms died out (was %d)", prev.OrganismCount),
		}
	case prev.PredatorCount > 0 && stats.PredatorCount == 0:
		return &Bookmark{
			Type:        BookmarkExtinction,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Predators died out (was %d)", prev.PredatorCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHuntSurge(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalKills int
	for _, h := range history {
		totalKills += h.Kills
	}
	avgKills := float64(totalKills) / float64(len(history))
	if avgKills == 0 {
		return nil
	}

	if float64(stats.Kills) > avgKills*2 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntSurge,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("%d kills is %.1fx the recent average (%.1f)", stats.Kills, float64(stats.Kills)/avgKills, avgKills),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats GenerationStats) *Bookmark {
	if bd.recentPredMin <= 0 || bd.recentPredMin > 3 {
		return nil
	}

	if stats.PredatorCount >= bd.recentPredMin*3 && stats.PredatorCount >= 6 {
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.PredatorCount

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.PredatorCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkOrganismCrash(stats GenerationStats) *Bookmark {
	if bd.recentOrgPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.OrganismCount)/float64(bd.recentOrgPeak)
	if drop > 0.30 && stats.OrganismCount < bd.recentOrgPeak-10 {
		oldPeak := bd.recentOrgPeak
		bd.recentOrgPeak = stats.OrganismCount

		return &Bookmark{
			Type:        BookmarkOrganismCrash,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Organisms crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.OrganismCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats GenerationStats) *Bookmark {
	if stats.OrganismCount < 10 || stats.PredatorCount < 3 {
		bd.stableGenerations = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < stableWindow-1 {
		return nil
	}
	recent := history[len(history)-(stableWindow-1):]

	orgs := make([]float64, 0, stableWindow)
	preds := make([]float64, 0, stableWindow)
	for _, h := range recent {
		orgs = append(orgs, float64(h.OrganismCount))
		preds = append(preds, float64(h.PredatorCount))
	}
	orgs = append(orgs, float64(stats.OrganismCount))
	preds = append(preds, float64(stats.PredatorCount))

	// Coefficient of variation below 20% for both species
	if squaredCV(orgs) < 0.04 && squaredCV(preds) < 0.04 {
		bd.stableGenerations++
	} else {
		bd.stableGenerations = 0
	}

	if bd.stableGenerations == stableWindow {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Stable ecosystem with %d organisms, %d predators over %d+ generations", stats.OrganismCount, stats.PredatorCount, stableWindow),
		}
	}
	return nil
}

func squaredCV(xs []float64) float64 {
	mean, variance := stat.PopMeanVariance(xs, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}
