// Package telemetry provides generation stats, run logs, bookmarks and the stats store.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

// GenerationStats holds the population summary written after every generation.
type GenerationStats struct {
	RunID      string `json:"run_id" csv:"run_id"`
	Generation int    `json:"generation" csv:"generation"`

	// Population counts at generation end (includes agents awaiting despawn)
	OrganismCount int `json:"organism_count" csv:"organism_count"`
	PredatorCount int `json:"predator_count" csv:"predator_count"`

	OrganismAvgSize                  float64 `json:"organism_avg_size" csv:"organism_avg_size"`
	OrganismAvgSpeed                 float64 `json:"organism_avg_speed" csv:"organism_avg_speed"`
	OrganismAvgEnergy                float64 `json:"organism_avg_energy" csv:"organism_avg_energy"`
	OrganismAvgReproductionThreshold float64 `json:"organism_avg_reproduction_threshold" csv:"organism_avg_reproduction_threshold"`

	PredatorAvgSize                  float64 `json:"predator_avg_size" csv:"predator_avg_size"`
	PredatorAvgSpeed                 float64 `json:"predator_avg_speed" csv:"predator_avg_speed"`
	PredatorAvgEnergy                float64 `json:"predator_avg_energy" csv:"predator_avg_energy"`
	PredatorAvgReproductionThreshold float64 `json:"predator_avg_reproduction_threshold" csv:"predator_avg_reproduction_threshold"`
	PredatorAvgHuntingEfficiency     float64 `json:"predator_avg_hunting_efficiency" csv:"predator_avg_hunting_efficiency"`
	PredatorAvgSatiationThreshold    float64 `json:"predator_avg_satiation_threshold" csv:"predator_avg_satiation_threshold"`

	// BiomeTally sums organism tolerances per biome.
	// CSV carries it flattened into the Tally* columns.
	BiomeTally     map[world.Biome]float64 `json:"biome_tally" csv:"-"`
	TallyForest    float64                 `json:"-" csv:"tally_forest"`
	TallyDesert    float64                 `json:"-" csv:"tally_desert"`
	TallyWater     float64                 `json:"-" csv:"tally_water"`
	TallyGrassland float64                 `json:"-" csv:"tally_grassland"`

	AverageFood float64 `json:"average_food" csv:"average_food"`

	// Organism energy distribution
	OrganismEnergyStd float64 `json:"organism_energy_std" csv:"organism_energy_std"`
	OrganismEnergyP10 float64 `json:"organism_energy_p10" csv:"organism_energy_p10"`
	OrganismEnergyP50 float64 `json:"organism_energy_p50" csv:"organism_energy_p50"`
	OrganismEnergyP90 float64 `json:"organism_energy_p90" csv:"organism_energy_p90"`

	// Events during the generation
	OrganismBirths      int `json:"organism_births" csv:"organism_births"`
	PredatorBirths      int `json:"predator_births" csv:"predator_births"`
	OrganismDeaths      int `json:"organism_deaths" csv:"organism_deaths"`
	PredatorDeaths      int `json:"predator_deaths" csv:"predator_deaths"`
	Kills               int `json:"kills" csv:"kills"`
	Overcrowded         int `json:"overcrowded" csv:"overcrowded"`
	CapCulls            int `json:"cap_culls" csv:"cap_culls"`
	ReproductionBlocked int `json:"reproduction_blocked" csv:"reproduction_blocked"`
}

// Population is the agent state sampled at the end of a generation.
type Population struct {
	Organisms []components.Organism
	Predators []components.Predator
}

// ComputeEnergyStats calculates mean, standard deviation and the 10th, 50th and
// 90th percentiles. Percentiles interpolate linearly over the empirical CDF.
// Fewer than two values report a zero deviation.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)

	return mean, std, p10, p50, p90
}

// average is the arithmetic mean, 0 for an empty slice.
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// ComputeGenerationStats summarizes a population and the grid it lives on.
// Event counters are left zero; Collector.Flush fills them.
func ComputeGenerationStats(generation int, pop Population, grid *world.World) GenerationStats {
	s := GenerationStats{
		Generation:    generation,
		OrganismCount: len(pop.Organisms),
		PredatorCount: len(pop.Predators),
		BiomeTally:    make(map[world.Biome]float64, world.NumBiomes),
	}
	for _, b := range world.AllBiomes {
		s.BiomeTally[b] = 0
	}

	n := len(pop.Organisms)
	size := make([]float64, n)
	speed := make([]float64, n)
	energy := make([]float64, n)
	threshold := make([]float64, n)
	for i := range pop.Organisms {
		o := &pop.Organisms[i]
		size[i] = float64(o.Size)
		speed[i] = float64(o.Speed)
		energy[i] = float64(o.Energy)
		threshold[i] = float64(o.ReproductionThreshold)
		for _, b := range world.AllBiomes {
			s.BiomeTally[b] += float64(o.Tolerance.For(b))
		}
	}
	s.OrganismAvgSize = average(size)
	s.OrganismAvgSpeed = average(speed)
	s.OrganismAvgEnergy = average(energy)
	s.OrganismAvgReproductionThreshold = average(threshold)
	_, s.OrganismEnergyStd, s.OrganismEnergyP10, s.OrganismEnergyP50, s.OrganismEnergyP90 = ComputeEnergyStats(energy)

	m := len(pop.Predators)
	size = make([]float64, m)
	speed = make([]float64, m)
	energy = make([]float64, m)
	threshold = make([]float64, m)
	hunting := make([]float64, m)
	satiation := make([]float64, m)
	for i := range pop.Predators {
		p := &pop.Predators[i]
		size[i] = float64(p.Size)
		speed[i] = float64(p.Speed)
		energy[i] = float64(p.Energy)
		threshold[i] = float64(p.ReproductionThreshold)
		hunting[i] = float64(p.HuntingEfficiency)
		satiation[i] = float64(p.SatiationThreshold)
	}
	s.PredatorAvgSize = average(size)
	s.PredatorAvgSpeed = average(speed)
	s.PredatorAvgEnergy = average(energy)
	s.PredatorAvgReproductionThreshold = average(threshold)
	s.PredatorAvgHuntingEfficiency = average(hunting)
	s.PredatorAvgSatiationThreshold = average(satiation)

	s.TallyForest = s.BiomeTally[world.Forest]
	s.TallyDesert = s.BiomeTally[world.Desert]
	s.TallyWater = s.BiomeTally[world.Water]
	s.TallyGrassland = s.BiomeTally[world.Grassland]

	if grid != nil && len(grid.Tiles) > 0 {
		s.AverageFood = grid.TotalFood() / float64(len(grid.Tiles))
	}

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("organisms", s.OrganismCount),
		slog.Int("predators", s.PredatorCount),
		slog.Float64("organism_avg_size", s.OrganismAvgSize),
		slog.Float64("organism_avg_speed", s.OrganismAvgSpeed),
		slog.Float64("organism_avg_energy", s.OrganismAvgEnergy),
		slog.Float64("predator_avg_size", s.PredatorAvgSize),
		slog.Float64("predator_avg_speed", s.PredatorAvgSpeed),
		slog.Float64("predator_avg_energy", s.PredatorAvgEnergy),
		slog.Float64("average_food", s.AverageFood),
		slog.Int("organism_births", s.OrganismBirths),
		slog.Int("predator_births", s.PredatorBirths),
		slog.Int("organism_deaths", s.OrganismDeaths),
		slog.Int("predator_deaths", s.PredatorDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("overcrowded", s.Overcrowded),
		slog.Int("cap_culls", s.CapCulls),
	)
}

// LogStats logs the generation stats.
func (s GenerationStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats",
		"generation", s.Generation,
		"organisms", s.OrganismCount,
		"predators", s.PredatorCount,
		"organism_energy_p10", s.OrganismEnergyP10,
		"organism_energy_p50", s.OrganismEnergyP50,
		"organism_energy_p90", s.OrganismEnergyP90,
		"average_food", s.AverageFood,
		"births", s.OrganismBirths+s.PredatorBirths,
		"deaths", s.OrganismDeaths+s.PredatorDeaths,
		"kills", s.Kills,
	)
}
