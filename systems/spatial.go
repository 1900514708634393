package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/components"
)

// Occupant is an indexed agent with its cell and insertion sequence.
// Seq preserves query order so ties resolve to the agent seen first.
type Occupant struct {
	E   ecs.Entity
	Pos components.Position
	Seq int
}

// TileIndex buckets agents by grid cell for O(1) co-location lookups.
type TileIndex struct {
	width  int
	height int
	cells  [][]Occupant // row-major
	next   int
}

// NewTileIndex creates an index covering a width x height grid.
func NewTileIndex(width, height int) *TileIndex {
	cells := make([][]Occupant, width*height)
	for i := range cells {
		cells[i] = make([]Occupant, 0, 4)
	}
	return &TileIndex{
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Clear removes all agents from the index.
func (ix *TileIndex) Clear() {
	for i := range ix.cells {
		ix.cells[i] = ix.cells[i][:0]
	}
	ix.next = 0
}

// Insert adds an agent at its cell. Out-of-bounds positions are ignored.
func (ix *TileIndex) Insert(e ecs.Entity, pos components.Position) {
	if pos.X < 0 || pos.X >= ix.width || pos.Y < 0 || pos.Y >= ix.height {
		return
	}
	idx := pos.Y*ix.width + pos.X
	ix.cells[idx] = append(ix.cells[idx], Occupant{E: e, Pos: pos, Seq: ix.next})
	ix.next++
}

// At returns the agents in cell (x, y) in insertion order.
func (ix *TileIndex) At(x, y int) []Occupant {
	if x < 0 || x >= ix.width || y < 0 || y >= ix.height {
		return nil
	}
	return ix.cells[y*ix.width+x]
}

// Nearest returns the closest agent within sqrt(maxDistSq) of pos.
// Equal distances resolve to the lowest insertion sequence.
func (ix *TileIndex) Nearest(pos components.Position, maxDistSq int) (Occupant, bool) {
	reach := 0
	for reach*reach < maxDistSq {
		reach++
	}

	var best Occupant
	bestDist := maxDistSq + 1
	found := false

	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			for _, o := range ix.At(pos.X+dx, pos.Y+dy) {
				d := pos.DistSq(o.Pos)
				if d > maxDistSq {
					continue
				}
				if d < bestDist || (d == bestDist && o.Seq < best.Seq) {
					best = o
					bestDist = d
					found = true
				}
			}
		}
	}

	return best, found
}

// Crowded calls fn for every cell holding more than threshold agents, in row-major order.
func (ix *TileIndex) Crowded(threshold int, fn func(occupants []Occupant)) {
	for _, cell := range ix.cells {
		if len(cell) > threshold {
			fn(cell)
		}
	}
}

// Each calls fn for every non-empty cell in row-major order.
func (ix *TileIndex) Each(fn func(x, y int, occupants []Occupant)) {
	for i, cell := range ix.cells {
		if len(cell) == 0 {
			continue
		}
		fn(i%ix.width, i/ix.width, cell)
	}
}
