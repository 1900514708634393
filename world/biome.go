package world

import (
	"fmt"

	"github.com/pthm-cable/habitat/config"
)

// Biome is the terrain type of a tile, fixed at generation.
type Biome uint8

const (
	Forest Biome = iota
	Desert
	Water
	Grassland

	NumBiomes = 4
)

// AllBiomes lists every biome in index order.
var AllBiomes = [NumBiomes]Biome{Forest, Desert, Water, Grassland}

var biomeNames = [NumBiomes]string{"Forest", "Desert", "Water", "Grassland"}

// String returns the display name for a biome.
func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "Unknown"
}

// MarshalText encodes the biome by name so it can key JSON objects.
func (b Biome) MarshalText() ([]byte, error) {
	if int(b) >= NumBiomes {
		return nil, fmt.Errorf("invalid biome %d", b)
	}
	return []byte(biomeNames[b]), nil
}

// UnmarshalText decodes a biome name.
func (b *Biome) UnmarshalText(text []byte) error {
	for i, name := range biomeNames {
		if name == string(text) {
			*b = Biome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown biome %q", text)
}

// AdaptRule selects how a biome changes an organism's energy each tick.
type AdaptRule uint8

const (
	AdaptGain    AdaptRule = iota // energy += Rate * tolerance
	AdaptPenalty                  // energy -= Rate / tolerance
	AdaptLethal                   // energy forced to LethalEnergy
)

// LethalEnergy is the value assigned to agents that must despawn at the next cleanup.
const LethalEnergy float32 = -1

// BiomeTraits is one row of the biome table.
type BiomeTraits struct {
	OrganismMoveCost float32 // base step cost for foragers, divided by tolerance
	PredatorMoveCost float32 // base step cost for predators
	FoodRegen        float32
	MaxFood          float32
	Regenerates      bool
	Adapt            AdaptRule
	AdaptRate        float32
}

// Apply returns the energy after one tick of passive adaptation.
func (t BiomeTraits) Apply(energy, tolerance float32) float32 {
	switch t.Adapt {
	case AdaptGain:
		return energy + t.AdaptRate*tolerance
	case AdaptPenalty:
		return energy - t.AdaptRate/tolerance
	default:
		return min(energy, LethalEnergy)
	}
}

// BiomeTable maps each biome to its movement, food and adaptation parameters.
type BiomeTable [NumBiomes]BiomeTraits

// NewBiomeTable builds the table from fixed terrain costs and configured food values.
// Water is the most expensive terrain for both species, Grassland the cheapest.
func NewBiomeTable(cfg *config.Config) BiomeTable {
	b := cfg.Biomes
	return BiomeTable{
		Forest: {
			OrganismMoveCost: 20, PredatorMoveCost: 6,
			FoodRegen: float32(b.Forest.FoodRegen), MaxFood: float32(b.Forest.MaxFood),
			Regenerates: true, Adapt: AdaptGain, AdaptRate: 0.1,
		},
		Desert: {
			OrganismMoveCost: 50, PredatorMoveCost: 10,
			FoodRegen: float32(b.Desert.FoodRegen), MaxFood: float32(b.Desert.MaxFood),
			Regenerates: true, Adapt: AdaptPenalty, AdaptRate: 0.1,
		},
		Water: {
			OrganismMoveCost: 100, PredatorMoveCost: 100,
			FoodRegen: float32(b.Water.FoodRegen), MaxFood: float32(b.Water.MaxFood),
			Regenerates: false, Adapt: AdaptLethal,
		},
		Grassland: {
			OrganismMoveCost: 10, PredatorMoveCost: 5,
			FoodRegen: float32(b.Grassland.FoodRegen), MaxFood: float32(b.Grassland.MaxFood),
			Regenerates: true, Adapt: AdaptGain, AdaptRate: 0.05,
		},
	}
}
