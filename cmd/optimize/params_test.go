package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/habitat/config"
)

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v != %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVector_DefaultsInBounds(t *testing.T) {
	for _, spec := range NewParamVector().Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
		if spec.field == nil {
			t.Errorf("%s has no config field", spec.Name)
		}
	}
}

func TestParamVector_ApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max * 10
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamped to %v", spec.Name, got[i], spec.Max)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config invalid: %v", err)
	}
}

func TestParamVector_ExtractDefaults(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()
	for i, spec := range pv.Specs {
		if got[i] != want[i] {
			t.Errorf("%s: config default %v, param default %v", spec.Name, got[i], want[i])
		}
	}
}

func TestComputeQuality(t *testing.T) {
	steady := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 50}
	noisy := []float64{50, 50, 50, 50, 50, 10, 90, 5, 95, 20}

	if q := computeQuality(steady, steady); math.Abs(q-1) > 1e-9 {
		t.Errorf("steady quality = %v, want 1", q)
	}
	if q := computeQuality(noisy, steady); q >= 1 || q <= 0 {
		t.Errorf("noisy quality = %v, want in (0, 1)", q)
	}
	if q := computeQuality(steady[:3], steady[:3]); q != 0 {
		t.Errorf("short run quality = %v, want 0", q)
	}
}

func TestComputeFitness_SurvivalDominates(t *testing.T) {
	if computeFitness(100, 0) >= computeFitness(80, 1) {
		t.Error("longer survival should beat higher quality")
	}
	if computeFitness(100, 1) >= computeFitness(100, 0) {
		t.Error("quality should break survival ties")
	}
}

func TestFitnessEvaluator_Extinction(t *testing.T) {
	cfg := config.Default()
	cfg.Predator.InitialCount = 0

	fe := NewFitnessEvaluator(NewParamVector(), 20, []int64{1, 2}, cfg)
	if got := fe.Evaluate(NewParamVector().DefaultVector()); got != 0 {
		t.Errorf("fitness without predators = %v, want 0", got)
	}
}
