// Package components defines ECS components for the simulation.
package components

// Kind distinguishes the two agent species.
type Kind uint8

const (
	KindOrganism Kind = iota // forager
	KindPredator
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindOrganism:
		return "organism"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// Kinds lists both species in processing order.
var Kinds = [...]Kind{KindOrganism, KindPredator}
