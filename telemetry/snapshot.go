package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/world"
)

// maxLineBytes bounds a single JSONL record; a snapshot carries the whole grid.
const maxLineBytes = 256 << 20

// Snapshot holds the full simulation state after one generation.
type Snapshot struct {
	RunID      string           `json:"run_id"`
	Config     *config.Config   `json:"config"`
	Organisms  []OrganismRecord `json:"organisms"`
	Predators  []PredatorRecord `json:"predators"`
	World      *world.World     `json:"world"`
	Generation int              `json:"generation"`
}

// OrganismRecord pairs an organism with its cell.
type OrganismRecord struct {
	Organism components.Organism `json:"organism"`
	Position components.Position `json:"position"`
}

// PredatorRecord pairs a predator with its cell.
type PredatorRecord struct {
	Predator components.Predator `json:"predator"`
	Position components.Position `json:"position"`
}

// Population returns the agent state without positions.
func (s *Snapshot) Population() Population {
	pop := Population{
		Organisms: make([]components.Organism, len(s.Organisms)),
		Predators: make([]components.Predator, len(s.Predators)),
	}
	for i := range s.Organisms {
		pop.Organisms[i] = s.Organisms[i].Organism
	}
	for i := range s.Predators {
		pop.Predators[i] = s.Predators[i].Predator
	}
	return pop
}

// ReadSnapshots loads every record of a world_data.jsonl log.
func ReadSnapshots(path string) ([]Snapshot, error) {
	return readJSONL[Snapshot](path)
}

// ReadSummaries loads every record of a summary_data.jsonl log.
func ReadSummaries(path string) ([]GenerationStats, error) {
	return readJSONL[GenerationStats](path)
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var out []T
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
