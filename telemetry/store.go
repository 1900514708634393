package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/habitat/config"
)

// storeBatchSize is how many generation rows are buffered before a commit.
const storeBatchSize = 100

// StatsStore persists run metadata and per-generation stats in SQLite.
type StatsStore struct {
	conn    *sqlx.DB
	pending []GenerationStats
}

// RunRow is one row of the runs table.
type RunRow struct {
	ID          string `db:"id"`
	Seed        int64  `db:"seed"`
	Width       int    `db:"width"`
	Height      int    `db:"height"`
	ConfigJSON  string `db:"config_json"`
	StartedAt   string `db:"started_at"`
	FinishedAt  string `db:"finished_at"`
	Generations int    `db:"generations"`
}

// GenerationRow is one row of the generations table.
type GenerationRow struct {
	RunID             string  `db:"run_id"`
	Generation        int     `db:"generation"`
	OrganismCount     int     `db:"organism_count"`
	PredatorCount     int     `db:"predator_count"`
	OrganismAvgEnergy float64 `db:"organism_avg_energy"`
	PredatorAvgEnergy float64 `db:"predator_avg_energy"`
	OrganismAvgSize   float64 `db:"organism_avg_size"`
	PredatorAvgSize   float64 `db:"predator_avg_size"`
	AverageFood       float64 `db:"average_food"`
	Births            int     `db:"births"`
	Deaths            int     `db:"deaths"`
	Kills             int     `db:"kills"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// OpenStatsStore opens or creates a SQLite stats database at the given path.
func OpenStatsStore(path string) (*StatsStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}

	s := &StatsStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *StatsStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		generations INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS generations (
		run_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		organism_count INTEGER NOT NULL,
		predator_count INTEGER NOT NULL,
		organism_avg_energy REAL NOT NULL,
		predator_avg_energy REAL NOT NULL,
		organism_avg_size REAL NOT NULL,
		predator_avg_size REAL NOT NULL,
		average_food REAL NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// BeginRun records a new run and its configuration.
func (s *StatsStore) BeginRun(runID string, cfg *config.Config) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = s.conn.Exec(`INSERT INTO runs (id, seed, width, height, config_json, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, cfg.Simulation.Seed, cfg.World.Width, cfg.World.Height,
		string(cfgJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}
	return nil
}

// Record buffers one generation, committing once a batch is full.
func (s *StatsStore) Record(stats GenerationStats) error {
	s.pending = append(s.pending, stats)
	if len(s.pending) < storeBatchSize {
		return nil
	}
	return s.Flush()
}

// Flush commits all buffered generation rows in one transaction.
func (s *StatsStore) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO generations
		(run_id, generation, organism_count, predator_count,
		 organism_avg_energy, predator_avg_energy, organism_avg_size, predator_avg_size,
		 average_food, births, deaths, kills)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range s.pending {
		_, err := stmt.Exec(
			g.RunID, g.Generation, g.OrganismCount, g.PredatorCount,
			g.OrganismAvgEnergy, g.PredatorAvgEnergy, g.OrganismAvgSize, g.PredatorAvgSize,
			g.AverageFood, g.OrganismBirths+g.PredatorBirths, g.OrganismDeaths+g.PredatorDeaths, g.Kills,
		)
		if err != nil {
			return fmt.Errorf("insert generation %d: %w", g.Generation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

// FinishRun flushes pending rows and stamps the run's final generation count.
func (s *StatsStore) FinishRun(runID string, generations int) error {
	if err := s.Flush(); err != nil {
		return fmt.Errorf("flush generations: %w", err)
	}
	_, err := s.conn.Exec("UPDATE runs SET finished_at = ?, generations = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), generations, runID)
	return err
}

// Run retrieves one run by ID.
func (s *StatsStore) Run(runID string) (RunRow, error) {
	var run RunRow
	err := s.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", runID)
	return run, err
}

// Generations returns every stored generation of a run in order.
func (s *StatsStore) Generations(runID string) ([]GenerationRow, error) {
	var rows []GenerationRow
	err := s.conn.Select(&rows,
		"SELECT * FROM generations WHERE run_id = ? ORDER BY generation",
		runID,
	)
	return rows, err
}

// Close flushes pending rows and closes the database connection.
func (s *StatsStore) Close() error {
	flushErr := s.Flush()
	if err := s.conn.Close(); err != nil {
		return err
	}
	return flushErr
}
