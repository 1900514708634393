package systems

// AdaptationSystem applies the passive energy effect of each forager's current biome.
type AdaptationSystem struct{}

// NewAdaptationSystem creates a new adaptation system.
func NewAdaptationSystem() *AdaptationSystem {
	return &AdaptationSystem{}
}

// Update adjusts every living forager's energy by its tile's adaptation rule.
// Predators are not affected by terrain.
func (s *AdaptationSystem) Update(ctx *Context) {
	query := ctx.Agents.Organisms()
	for query.Next() {
		pos, org := query.Get()
		if !org.Alive() {
			continue
		}
		biome := ctx.Grid.At(pos.X, pos.Y).Biome
		org.Energy = ctx.Biomes[biome].Apply(org.Energy, org.Tolerance.For(biome))
	}
}
