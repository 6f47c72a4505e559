// Package config provides the configuration loader for planar.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const currentVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds planar.yaml in cwd or the nearest parent directory and returns
// the effective configuration. Without a file the defaults apply and cwd
// becomes the root.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, found := findConfigFile(cwd)
	if !found {
		l.Logger.Debug("no config file found, using defaults", "cwd", cwd)
		cfg := domain.DefaultConfig()
		cfg.Root = cwd
		return cfg, nil
	}
	return l.LoadFile(path)
}

// LoadFile reads the configuration at path. Keys the file omits keep their
// default values.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	file := fromDomain(domain.DefaultConfig())
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	if err := validate(&file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	cfg := file.toDomain(filepath.Dir(path))
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	l.Logger.Debug("loaded configuration", "path", path)
	return cfg, nil
}

func findConfigFile(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func validate(f *Planarfile) error {
	invalid := func(msg, key string, value any) error {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, msg), key, value)
	}

	switch {
	case f.Version != currentVersion:
		return invalid("unsupported config version", "version", f.Version)
	case f.Workers < 0:
		return invalid("workers must not be negative", "workers", f.Workers)
	case f.QueueDepth < 0:
		return invalid("queue_depth must not be negative", "queue_depth", f.QueueDepth)
	case f.Timeout < 0:
		return invalid("timeout must not be negative", "timeout", f.Timeout.String())
	case f.MaxBatchSize < 0:
		return invalid("max_batch_size must not be negative", "max_batch_size", f.MaxBatchSize)
	case f.Limits.MaxNodes < 0 || f.Limits.MaxEdges < 0:
		return invalid("limits must not be negative", "limits", f.Limits)
	case f.Retry.MaxAttempts < 1:
		return invalid("retry.max_attempts must be at least 1", "max_attempts", f.Retry.MaxAttempts)
	case f.Retry.InitialInterval < 0 || f.Retry.MaxInterval < 0:
		return invalid("retry intervals must not be negative", "retry", f.Retry)
	case f.Cache.MaxEntries < 0:
		return invalid("cache.max_entries must not be negative", "max_entries", f.Cache.MaxEntries)
	case f.Cache.TTL < 0 || f.Cache.WriteTimeout < 0:
		return invalid("cache durations must not be negative", "cache", f.Cache.Backend)
	}

	switch domain.CacheBackend(f.Cache.Backend) {
	case domain.CacheMemory, domain.CacheDisk, domain.CacheRedis, domain.CacheNone:
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownCacheBackend, "cache.backend"), "backend", f.Cache.Backend)
	}
	return nil
}
