package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/habitat/config"
)

// Output file names inside the output directory.
const (
	WorldDataFile   = "world_data.jsonl"
	SummaryDataFile = "summary_data.jsonl"
	StatsCSVFile    = "stats.csv"
	PerfCSVFile     = "perf.csv"
	BookmarksFile   = "bookmarks.csv"
	ConfigFile      = "config.yaml"
)

// OutputManager writes the per-generation logs.
// The snapshot log is truncated when opened; the summary log is appended to.
type OutputManager struct {
	dir string

	worldFile   *os.File
	summaryFile *os.File
	statsFile   *os.File
	perfFile    *os.File
	bookFile    *os.File

	worldEnc   *json.Encoder
	summaryEnc *json.Encoder

	statsHeaderWritten bool
	perfHeaderWritten  bool
	bookHeaderWritten  bool
}

// FileSize reports the size of one output file.
type FileSize struct {
	Name  string
	Bytes uint64
}

// NewOutputManager opens the log files enabled in out.
// Returns nil if neither data nor stats logging is enabled.
func NewOutputManager(out config.OutputConfig) (*OutputManager, error) {
	if !out.LogData && !out.LogStats {
		return nil, nil
	}

	dir := out.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	if out.LogData {
		f, err := os.Create(filepath.Join(dir, WorldDataFile))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", WorldDataFile, err)
		}
		om.worldFile = f
		om.worldEnc = json.NewEncoder(f)
	}

	if out.LogStats {
		f, err := os.OpenFile(filepath.Join(dir, SummaryDataFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("opening %s: %w", SummaryDataFile, err)
		}
		om.summaryFile = f
		om.summaryEnc = json.NewEncoder(f)

		f, err = os.Create(filepath.Join(dir, StatsCSVFile))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", StatsCSVFile, err)
		}
		om.statsFile = f

		f, err = os.Create(filepath.Join(dir, PerfCSVFile))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", PerfCSVFile, err)
		}
		om.perfFile = f

		f, err = os.Create(filepath.Join(dir, BookmarksFile))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", BookmarksFile, err)
		}
		om.bookFile = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteSnapshot appends one record to the snapshot log.
func (om *OutputManager) WriteSnapshot(snap *Snapshot) error {
	if om == nil || om.worldEnc == nil {
		return nil
	}
	if err := om.worldEnc.Encode(snap); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// WriteStats appends one record to the summary log and stats.csv.
func (om *OutputManager) WriteStats(stats GenerationStats) error {
	if om == nil || om.summaryEnc == nil {
		return nil
	}

	if err := om.summaryEnc.Encode(stats); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	records := []GenerationStats{stats}
	if !om.statsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil || om.perfFile == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(generation)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil || om.bookFile == nil {
		return nil
	}

	records := []Bookmark{b}

	if !om.bookHeaderWritten {
		if err := gocsv.Marshal(records, om.bookFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
		om.bookHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.bookFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Sizes reports the current size of every open log file. Call it before Close.
func (om *OutputManager) Sizes() []FileSize {
	if om == nil {
		return nil
	}
	var sizes []FileSize
	for _, f := range om.files() {
		if f == nil {
			continue
		}
		info, err := f.Stat()
		if err != nil {
			continue
		}
		sizes = append(sizes, FileSize{Name: filepath.Base(f.Name()), Bytes: uint64(info.Size())})
	}
	return sizes
}

func (om *OutputManager) files() []*os.File {
	return []*os.File{om.worldFile, om.summaryFile, om.statsFile, om.perfFile, om.bookFile}
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range om.files() {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
