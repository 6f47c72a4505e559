package cache

import (
	"io"
	"path/filepath"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store is a result cache that owns resources released by Close.
type Store interface {
	ports.ResultCache
	io.Closer
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Bounded)(nil)
	_ Store = (*Disk)(nil)
	_ Store = (*Redis)(nil)
	_ Store = Nop{}
)

// New builds the backend selected by cfg. Relative disk directories are
// resolved against root.
func New(cfg domain.CacheConfig, root string) (Store, error) {
	switch cfg.Backend {
	case domain.CacheMemory, "":
		if cfg.MaxEntries > 0 || cfg.TTL > 0 {
			return NewBounded(cfg.MaxEntries, cfg.TTL)
		}
		return NewMemory(), nil
	case domain.CacheDisk:
		dir := cfg.Dir
		if dir == "" {
			dir = domain.DefaultCacheDir
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		return NewDisk(dir), nil
	case domain.CacheRedis:
		return NewRedis(cfg.Redis, cfg.TTL), nil
	case domain.CacheNone:
		return Nop{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, "unsupported backend"), "backend", string(cfg.Backend))
	}
}
