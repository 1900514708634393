package components

// Position is an agent's grid cell. Stages keep it within the world bounds.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offset returns the position shifted by (dx, dy). The result is not clamped.
func (p Position) Offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// DistSq returns the squared grid distance to q.
func (p Position) DistSq(q Position) int {
	dx := q.X - p.X
	dy := q.Y - p.Y
	return dx*dx + dy*dy
}
