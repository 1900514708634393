package world

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/habitat/config"
)

// Noise samples a coherent 2D field with values roughly in [-1, 1].
type Noise interface {
	Eval2(x, y float64) float64
}

// NewNoise returns the configured noise source for the given seed.
func NewNoise(kind string, seed int64) (Noise, error) {
	switch kind {
	case config.NoisePerlin, "":
		return NewPerlinNoise(seed), nil
	case config.NoiseSimplex:
		return opensimplex.New(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise source %q", kind)
	}
}

// PerlinNoise generates gradient noise from a seeded permutation table.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate so corner hashes never need wrapping
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Eval2 returns the noise value at (x, y). Integer lattice points map to 0.
func (p *PerlinNoise) Eval2(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	X := int(fx) & 255
	Y := int(fy) & 255

	x -= fx
	y -= fy

	u := fade(x)
	v := fade(y)

	aa := p.perm[p.perm[X]+Y]
	ab := p.perm[p.perm[X]+Y+1]
	ba := p.perm[p.perm[X+1]+Y]
	bb := p.perm[p.perm[X+1]+Y+1]

	return lerp(v,
		lerp(u, grad2D(aa, x, y), grad2D(ba, x-1, y)),
		lerp(u, grad2D(ab, x, y-1), grad2D(bb, x-1, y-1)),
	)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad2D picks one of eight gradient directions from the hash.
func grad2D(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}
