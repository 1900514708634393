package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/habitat/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.StagePredation)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.StageConsumption)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[systems.StagePredation]; !ok {
		t.Error("expected predation phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[systems.StageConsumption]; !ok {
		t.Error("expected consumption phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.StageDespawn)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			systems.StagePredation:        10,
			systems.StageOrganismBreeding: 25,
			PhaseTelemetry:                5,
		},
	}

	row := stats.ToCSV(42)
	if row.Generation != 42 || row.AvgTickUS != 1500 {
		t.Errorf("row header = (%d, %d), want (42, 1500)", row.Generation, row.AvgTickUS)
	}
	if row.PredationPct != 10 || row.OrganismBreedingPct != 25 || row.TelemetryPct != 5 {
		t.Errorf("phase columns = (%v, %v, %v), want (10, 25, 5)", row.PredationPct, row.OrganismBreedingPct, row.TelemetryPct)
	}
}

func TestPerfStats_LogStats(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		MinTickDuration: time.Millisecond,
		MaxTickDuration: 2 * time.Millisecond,
		TicksPerSecond:  666,
		PhasePct: map[string]float64{
			systems.StagePredation:     60,
			systems.StageConsumption:   40,
			systems.StagePopulationCap: 0.05, // below the reporting floor
		},
	}

	var buf bytes.Buffer
	stats.LogStats(slog.New(slog.NewJSONHandler(&buf, nil)))

	out := buf.String()
	for _, want := range []string{`"msg":"perf"`, `"avg_tick_us":1500`, `"predation_pct":60`, `"consumption_pct":40`} {
		if !strings.Contains(out, want) {
			t.Errorf("perf log missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "population_cap_pct") {
		t.Errorf("negligible phase logged: %s", out)
	}
}
