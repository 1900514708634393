package systems

import (
	"math/rand"

	"github.com/pthm-cable/habitat/components"
	"github.com/pthm-cable/habitat/world"
)

// Breeding constants
const (
	MinTrait         float32 = 0.1 // floor for mutated size and speed
	SpeedSizePenalty float32 = 0.1 // child speed loses size * SpeedSizePenalty
	MinChildCooldown float32 = 1   // ticks
)

// Tolerance ranges for freshly drawn maps.
const (
	homeToleranceMin  = 1.0
	homeToleranceMax  = 1.5
	otherToleranceMin = 0.1
	otherToleranceMax = 0.8
)

// BreedingSystem handles asexual reproduction with mutation for both species.
type BreedingSystem struct {
	orgBirths  []orgBirth
	predBirths []predBirth
}

type orgBirth struct {
	pos components.Position
	org components.Organism
}

type predBirth struct {
	pos  components.Position
	pred components.Predator
}

// NewBreedingSystem creates a new breeding system.
func NewBreedingSystem() *BreedingSystem {
	return &BreedingSystem{}
}

// DrawTolerance returns a tolerance map favoring home: home biome in [1.0, 1.5),
// every other biome in [0.1, 0.8).
func DrawTolerance(home world.Biome, rng *rand.Rand) components.BiomeTolerance {
	var t components.BiomeTolerance
	for _, b := range world.AllBiomes {
		if b == home {
			t[b] = uniform(rng, homeToleranceMin, homeToleranceMax)
		} else {
			t[b] = uniform(rng, otherToleranceMin, otherToleranceMax)
		}
	}
	return t
}

// BreedOrganisms runs one reproduction pass over foragers and returns the number of births.
// The pass is skipped entirely when the living population is already at the cap.
// An agent with a pending cooldown spends the tick counting it down instead.
func (s *BreedingSystem) BreedOrganisms(ctx *Context) int {
	if s.atCapacity(ctx, components.KindOrganism) {
		return 0
	}

	cfg := &ctx.Cfg.Organism
	m := float32(cfg.Mutability)
	cooldown := float32(cfg.ReproductionCooldown)
	rng := ctx.Rand()

	s.orgBirths = s.orgBirths[:0]

	query := ctx.Agents.Organisms()
	for query.Next() {
		pos, org := query.Get()

		if org.ReproductionCooldown > 0 {
			org.ReproductionCooldown--
			continue
		}
		if !(org.Energy > org.ReproductionThreshold) {
			continue
		}

		home := ctx.Grid.At(pos.X, pos.Y).Biome
		tolerance := DrawTolerance(home, ctx.Rand())
		for i := range tolerance {
			tolerance[i] *= 1 + jitter(rng, m)
		}
		tolerance.Clamp()

		threshold := org.ReproductionThreshold * (1 + jitter(rng, m))
		size, speed := s.mutateBody(rng, org.Size, org.Speed, m, ctx.Cfg.Simulation.SpeedBias)
		childCooldown := max(cooldown*(1+jitter(rng, m)), MinChildCooldown)

		half := org.Energy / 2
		child := components.Organism{
			Energy:                half,
			Speed:                 speed,
			Size:                  size,
			ReproductionThreshold: threshold,
			ReproductionCooldown:  childCooldown,
			Tolerance:             tolerance,
		}

		childPos := s.childPosition(ctx, rng, *pos)
		DrownOnWater(ctx.Grid, childPos, &child)
		s.orgBirths = append(s.orgBirths, orgBirth{pos: childPos, org: child})

		org.Energy = half
		org.ReproductionCooldown = cooldown
	}

	// Spawn after the query closes
	for i := range s.orgBirths {
		ctx.Agents.SpawnOrganism(s.orgBirths[i].pos, s.orgBirths[i].org)
		ctx.Recorder.RecordBirth(components.KindOrganism)
	}

	return len(s.orgBirths)
}

// BreedPredators runs one reproduction pass over predators and returns the number of births.
func (s *BreedingSystem) BreedPredators(ctx *Context) int {
	if s.atCapacity(ctx, components.KindPredator) {
		return 0
	}

	cfg := &ctx.Cfg.Predator
	m := float32(cfg.Mutability)
	cooldown := float32(cfg.ReproductionCooldown)
	rng := ctx.Rand()

	s.predBirths = s.predBirths[:0]

	query := ctx.Agents.Predators()
	for query.Next() {
		pos, pred := query.Get()

		if pred.ReproductionCooldown > 0 {
			pred.ReproductionCooldown--
			continue
		}
		if !(pred.Energy > pred.ReproductionThreshold) {
			continue
		}

		size, speed := s.mutateBody(rng, pred.Size, pred.Speed, m, ctx.Cfg.Simulation.SpeedBias)
		childCooldown := max(cooldown*(1+jitter(rng, m)), MinChildCooldown)

		half := pred.Energy / 2
		child := components.Predator{
			Energy:                half,
			Speed:                 speed,
			Size:                  size,
			HuntingEfficiency:     pred.HuntingEfficiency * (1 + jitter(rng, m)),
			SatiationThreshold:    pred.SatiationThreshold * (1 + jitter(rng, m)),
			ReproductionThreshold: pred.ReproductionThreshold * (1 + jitter(rng, m)),
			ReproductionCooldown:  childCooldown,
		}

		s.predBirths = append(s.predBirths, predBirth{pos: s.childPosition(ctx, rng, *pos), pred: child})

		pred.Energy = half
		pred.ReproductionCooldown = cooldown
	}

	for i := range s.predBirths {
		ctx.Agents.SpawnPredator(s.predBirths[i].pos, s.predBirths[i].pred)
		ctx.Recorder.RecordBirth(components.KindPredator)
	}

	return len(s.predBirths)
}

// atCapacity reports whether the living population blocks reproduction this tick.
func (s *BreedingSystem) atCapacity(ctx *Context, kind components.Kind) bool {
	orgs, preds := ctx.Agents.LivingCounts()
	if orgs+preds < ctx.Cfg.Population.MaxTotalEntities {
		return false
	}
	ctx.Recorder.RecordReproductionBlocked(kind)
	ctx.Logger.Debug("max entities reached, skipping reproduction",
		"kind", kind.String(),
		"total", orgs+preds,
		"max", ctx.Cfg.Population.MaxTotalEntities,
	)
	return true
}

// mutateBody returns the child's size and speed. Speed grows by the bias, then
// pays a penalty proportional to the new size. Both are floored at MinTrait.
func (s *BreedingSystem) mutateBody(rng *rand.Rand, size, speed, m float32, bias float64) (float32, float32) {
	childSize := max(size*(1+jitter(rng, m)), MinTrait)
	childSpeed := speed * (1 + float32(bias) + jitter(rng, m))
	childSpeed = max(childSpeed-childSize*SpeedSizePenalty, MinTrait)
	return childSize, childSpeed
}

// childPosition picks a cell in the parent's 3x3 neighborhood, clamped to the grid.
func (s *BreedingSystem) childPosition(ctx *Context, rng *rand.Rand, parent components.Position) components.Position {
	dx := rng.Intn(3) - 1
	dy := rng.Intn(3) - 1
	p := parent.Offset(dx, dy)
	p.X, p.Y = ctx.Grid.Clamp(p.X, p.Y)
	return p
}

// DrownOnWater kills a forager placed on a Water tile, so it despawns before it can move.
func DrownOnWater(grid *world.World, pos components.Position, org *components.Organism) {
	if grid.At(pos.X, pos.Y).Biome == world.Water {
		org.Kill()
	}
}

// jitter draws a symmetric perturbation in [-m, m).
func jitter(rng *rand.Rand, m float32) float32 {
	return (rng.Float32()*2 - 1) * m
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
