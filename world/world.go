// Package world holds the biome grid: terrain generation and the food economy of tiles.
package world

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/habitat/config"
)

// Biome thresholds applied to the noise sample of each tile.
const (
	waterBelow  = -0.3
	desertBelow = -0.1
	grassBelow  = 0.5
)

// Initial food is drawn uniformly from [minInitialFood, maxInitialFood).
const (
	minInitialFood = 1.0
	maxInitialFood = 100.0
)

// Tile is one grid cell. Its biome never changes; only Food does.
type Tile struct {
	Biome       Biome   `json:"biome"`
	Temperature float32 `json:"temperature"`
	Humidity    float32 `json:"humidity"`
	Food        float32 `json:"food_availability"`
}

// World is a width x height grid of tiles stored row-major.
type World struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// Options controls how terrain is sampled.
type Options struct {
	Noise string  // config.NoisePerlin or config.NoiseSimplex
	Scale float64 // grid cells per noise unit
}

// DefaultOptions returns Perlin noise sampled at 1/10 of grid coordinates.
func DefaultOptions() Options {
	return Options{Noise: config.NoisePerlin, Scale: 10}
}

// OptionsFromConfig extracts generation options from the world config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Noise: cfg.World.Noise, Scale: cfg.World.NoiseScale}
}

// New generates a world. Identical (width, height, seed, opts) always yield an identical grid.
func New(width, height int, seed int64, opts Options) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %dx%d", width, height)
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}

	rng := rand.New(rand.NewSource(seed))
	noise, err := NewNoise(opts.Noise, rng.Int63())
	if err != nil {
		return nil, err
	}

	w := &World{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := noise.Eval2(float64(x)/opts.Scale, float64(y)/opts.Scale)
			w.Tiles[y*width+x] = Tile{
				Biome:       classify(v),
				Temperature: 20,
				Humidity:    0.5,
				Food:        float32(minInitialFood + rng.Float64()*(maxInitialFood-minInitialFood)),
			}
		}
	}

	return w, nil
}

// classify maps a noise sample to a biome.
func classify(v float64) Biome {
	switch {
	case v < waterBelow:
		return Water
	case v < desertBelow:
		return Desert
	case v < grassBelow:
		return Grassland
	default:
		return Forest
	}
}

// At returns the tile at (x, y). Coordinates must be in bounds.
func (w *World) At(x, y int) *Tile {
	return &w.Tiles[w.Index(x, y)]
}

// Index returns the row-major index of (x, y).
func (w *World) Index(x, y int) int {
	return y*w.Width + x
}

// InBounds reports whether (x, y) lies on the grid.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.Width && y >= 0 && y < w.Height
}

// Clamp moves (x, y) onto the nearest grid cell.
func (w *World) Clamp(x, y int) (int, int) {
	return clampInt(x, 0, w.Width-1), clampInt(y, 0, w.Height-1)
}

// Regenerate adds each biome's regrowth to every tile at or below its cap.
// A tile exactly at the cap still regrows once, so food may overshoot by one step.
func (w *World) Regenerate(table *BiomeTable) {
	for i := range w.Tiles {
		t := &w.Tiles[i]
		traits := &table[t.Biome]
		if !traits.Regenerates || t.Food > traits.MaxFood {
			continue
		}
		t.Food += traits.FoodRegen
	}
}

// TotalFood sums food over all tiles.
func (w *World) TotalFood() float64 {
	var total float64
	for i := range w.Tiles {
		total += float64(w.Tiles[i].Food)
	}
	return total
}

// BiomeCounts returns how many tiles belong to each biome.
func (w *World) BiomeCounts() [NumBiomes]int {
	var counts [NumBiomes]int
	for i := range w.Tiles {
		counts[w.Tiles[i].Biome]++
	}
	return counts
}

// Clone returns a deep copy of the grid.
func (w *World) Clone() *World {
	dup := &World{Width: w.Width, Height: w.Height, Tiles: make([]Tile, len(w.Tiles))}
	copy(dup.Tiles, w.Tiles)
	return dup
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
