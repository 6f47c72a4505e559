package ports

import (
	"context"

	"go.trai.ch/planar/internal/core/domain"
)

// ResultCache defines the interface for storing and retrieving planarity results
// by fingerprint.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ResultCache interface {
	// Get retrieves the result stored under the given fingerprint.
	// Returns nil, nil if not found.
	Get(ctx context.Context, fp domain.Fingerprint) (*domain.PlanarityResult, error)

	// Put stores the result under the given fingerprint.
	// Storing an equal value twice is a no-op in effect.
	Put(ctx context.Context, fp domain.Fingerprint, result *domain.PlanarityResult) error
}
