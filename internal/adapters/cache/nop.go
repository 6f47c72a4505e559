package cache

import (
	"context"

	"go.trai.ch/planar/internal/core/domain"
)

// Nop is a cache that stores nothing. Every lookup misses.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, domain.Fingerprint) (*domain.PlanarityResult, error) {
	return nil, nil
}

// Put discards the result.
func (Nop) Put(context.Context, domain.Fingerprint, *domain.PlanarityResult) error {
	return nil
}

// Close is a no-op.
func (Nop) Close() error {
	return nil
}
