// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/planar/internal/core/domain"
)

// Fingerprinter computes stable content digests of graph inputs.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns the digest of the normalized input.
	// It fails only for inputs that are not well-formed text.
	Fingerprint(input string) (domain.Fingerprint, error)
}

// GraphParser turns an edge-list description into a graph.
type GraphParser interface {
	// Parse returns the graph described by input.
	Parse(input string) (*domain.Graph, error)
}

// Analyzer runs the compute path for a single input: parsing and planarity testing.
type Analyzer interface {
	// Analyze parses the input and tests it for planarity.
	// The fingerprint is stamped onto the returned result.
	Analyze(ctx context.Context, fp domain.Fingerprint, input string) (*domain.PlanarityResult, error)
}
