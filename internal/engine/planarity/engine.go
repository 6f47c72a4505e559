// Package planarity decides whether a graph admits a crossing-free drawing in
// the plane and, when it does not, extracts a Kuratowski obstruction.
package planarity

import (
	"context"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// Outcome is the decision for one graph.
type Outcome struct {
	Planar bool
	// Obstruction is the K5 or K3,3 witness; nil iff Planar.
	Obstruction *domain.Obstruction
	// Witness holds the indices of the graph edges forming the Kuratowski
	// subdivision, ascending; empty iff Planar.
	Witness []int
}

// Engine runs the left-right planarity test. It is stateless and safe for
// concurrent use.
type Engine struct{}

// New creates a new Engine.
func New() *Engine {
	return &Engine{}
}

// Test decides planarity of g and, for a non-planar g, builds the obstruction
// from the same graph instance. The context is only consulted during
// obstruction extraction, which is the expensive part.
func (e *Engine) Test(ctx context.Context, g *domain.Graph) (Outcome, error) {
	n := g.NodeCount()
	endpoints := make([][2]int, 0, g.EdgeCount())
	for u, v := range g.EdgeIndices() {
		endpoints = append(endpoints, [2]int{u, v})
	}

	if isPlanar(n, endpoints) {
		return Outcome{Planar: true}, nil
	}

	witness, err := minimalNonPlanar(ctx, n, endpoints)
	if err != nil {
		return Outcome{}, zerr.Wrap(err, "obstruction extraction interrupted")
	}

	obs, err := kuratowski(g, witness)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Obstruction: obs, Witness: witness}, nil
}

// IsPlanar reports whether g is planar without extracting a witness.
func (e *Engine) IsPlanar(g *domain.Graph) bool {
	endpoints := make([][2]int, 0, g.EdgeCount())
	for u, v := range g.EdgeIndices() {
		endpoints = append(endpoints, [2]int{u, v})
	}
	return isPlanar(g.NodeCount(), endpoints)
}
