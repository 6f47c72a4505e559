package cache

import (
	"context"
	"time"

	"github.com/Yiling-J/theine-go"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// defaultTTLCapacity bounds a TTL-only cache.
const defaultTTLCapacity = 1 << 16

// Bounded is an in-process cache with a fixed entry budget and optional
// expiry, backed by theine's W-TinyLFU admission policy.
type Bounded struct {
	cache *theine.Cache[domain.Fingerprint, *domain.PlanarityResult]
	ttl   time.Duration
}

// NewBounded creates a Bounded cache holding at most maxEntries results.
// A zero maxEntries with a positive ttl falls back to a default capacity.
func NewBounded(maxEntries int64, ttl time.Duration) (*Bounded, error) {
	if maxEntries <= 0 {
		maxEntries = defaultTTLCapacity
	}
	c, err := theine.NewBuilder[domain.Fingerprint, *domain.PlanarityResult](maxEntries).Build()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build bounded cache"), "max_entries", maxEntries)
	}
	return &Bounded{cache: c, ttl: ttl}, nil
}

// Get retrieves the result stored under fp.
func (b *Bounded) Get(_ context.Context, fp domain.Fingerprint) (*domain.PlanarityResult, error) {
	res, ok := b.cache.Get(fp)
	if !ok {
		return nil, nil
	}
	return res, nil
}

// Put stores result under fp. Every entry costs one unit of the budget.
func (b *Bounded) Put(_ context.Context, fp domain.Fingerprint, result *domain.PlanarityResult) error {
	if b.ttl > 0 {
		b.cache.SetWithTTL(fp, result, 1, b.ttl)
		return nil
	}
	b.cache.Set(fp, result, 1)
	return nil
}

// Close stops the cache's maintenance goroutines.
func (b *Bounded) Close() error {
	b.cache.Close()
	return nil
}
