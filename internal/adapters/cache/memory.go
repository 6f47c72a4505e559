// Package cache implements the result cache backends.
package cache

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/planar/internal/core/domain"
)

const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	entries map[domain.Fingerprint]*domain.PlanarityResult
}

// Memory is an unbounded in-process cache. Fingerprints are spread over a
// fixed set of independently locked shards so concurrent lookups of
// different keys rarely contend.
//
// Stored results are shared, not copied; callers must treat them as immutable.
type Memory struct {
	shards [shardCount]*shard
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	m := &Memory{}
	for i := range m.shards {
		m.shards[i] = &shard{entries: make(map[domain.Fingerprint]*domain.PlanarityResult)}
	}
	return m
}

func (m *Memory) shardFor(fp domain.Fingerprint) *shard {
	return m.shards[xxhash.Sum64String(string(fp))%shardCount]
}

// Get retrieves the result stored under fp.
func (m *Memory) Get(_ context.Context, fp domain.Fingerprint) (*domain.PlanarityResult, error) {
	s := m.shardFor(fp)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[fp], nil
}

// Put stores result under fp.
func (m *Memory) Put(_ context.Context, fp domain.Fingerprint, result *domain.PlanarityResult) error {
	s := m.shardFor(fp)
	s.mu.Lock()
	s.entries[fp] = result
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
