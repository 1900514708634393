package components

import (
	"encoding/json"
	"fmt"

	"github.com/pthm-cable/habitat/world"
)

// MinTolerance keeps every tolerance strictly positive so cost and penalty divisions stay finite.
const MinTolerance float32 = 0.01

// BiomeTolerance holds one multiplier per biome, indexed by world.Biome.
// Higher values make a biome cheaper to cross and more rewarding to stand on.
type BiomeTolerance [world.NumBiomes]float32

// For returns the tolerance for biome b.
func (t *BiomeTolerance) For(b world.Biome) float32 {
	return t[b]
}

// Clamp raises every entry to at least MinTolerance.
func (t *BiomeTolerance) Clamp() {
	for i := range t {
		if t[i] < MinTolerance {
			t[i] = MinTolerance
		}
	}
}

// MarshalJSON encodes the tolerances as an object keyed by biome name.
func (t BiomeTolerance) MarshalJSON() ([]byte, error) {
	m := make(map[world.Biome]float32, world.NumBiomes)
	for _, b := range world.AllBiomes {
		m[b] = t[b]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by biome name. Every biome must be present.
func (t *BiomeTolerance) UnmarshalJSON(data []byte) error {
	var m map[world.Biome]float32
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != world.NumBiomes {
		return fmt.Errorf("biome tolerance has %d entries, want %d", len(m), world.NumBiomes)
	}
	for b, v := range m {
		t[b] = v
	}
	return nil
}

// Organism is a forager's state.
// Energy may dip below zero within a tick; the agent is removed at the next despawn pass.
type Organism struct {
	Energy                float32        `json:"energy"`
	Speed                 float32        `json:"speed"`
	Size                  float32        `json:"size"`
	ReproductionThreshold float32        `json:"reproduction_threshold"`
	ReproductionCooldown  float32        `json:"reproduction_cooldown"` // ticks remaining
	Tolerance             BiomeTolerance `json:"biome_tolerance"`
}

// Alive reports whether the organism still takes part in the simulation.
func (o *Organism) Alive() bool { return o.Energy > 0 }

// Kill forces the organism's energy to a lethal value.
func (o *Organism) Kill() { o.Energy = min(o.Energy, world.LethalEnergy) }

// Predator is a hunter's state. Energy is capped at the configured maximum after each kill.
type Predator struct {
	Energy                float32 `json:"energy"`
	Speed                 float32 `json:"speed"`
	Size                  float32 `json:"size"`
	ReproductionThreshold float32 `json:"reproduction_threshold"`
	HuntingEfficiency     float32 `json:"hunting_efficiency"`
	SatiationThreshold    float32 `json:"satiation_threshold"`
	ReproductionCooldown  float32 `json:"reproduction_cooldown"`
}

// Alive reports whether the predator still takes part in the simulation.
func (p *Predator) Alive() bool { return p.Energy > 0 }

// Kill forces the predator's energy to a lethal value.
func (p *Predator) Kill() { p.Energy = min(p.Energy, world.LethalEnergy) }

// Hungry reports whether the predator is below its satiation threshold and may hunt.
func (p *Predator) Hungry() bool { return p.Energy < p.SatiationThreshold }
