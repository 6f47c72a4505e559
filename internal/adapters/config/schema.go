package config

import (
	"time"

	"go.trai.ch/planar/internal/core/domain"
)

// Planarfile is the structure of planar.yaml.
type Planarfile struct {
	Version      string        `yaml:"version"`
	Workers      int           `yaml:"workers"`
	QueueDepth   int           `yaml:"queue_depth"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBatchSize int           `yaml:"max_batch_size"`
	Limits       LimitsDTO     `yaml:"limits"`
	Retry        RetryDTO      `yaml:"retry"`
	Cache        CacheDTO      `yaml:"cache"`
	Server       ServerDTO     `yaml:"server"`
	Log          LogDTO        `yaml:"log"`
}

// LimitsDTO bounds accepted graph sizes.
type LimitsDTO struct {
	MaxNodes int `yaml:"max_nodes"`
	MaxEdges int `yaml:"max_edges"`
}

// RetryDTO configures resubmission under backpressure.
type RetryDTO struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// CacheDTO configures the result cache.
type CacheDTO struct {
	Backend        string        `yaml:"backend"`
	MaxEntries     int64         `yaml:"max_entries"`
	TTL            time.Duration `yaml:"ttl"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	WriteBackOnHit bool          `yaml:"write_back_on_hit"`
	Dir            string        `yaml:"dir"`
	Redis          RedisDTO      `yaml:"redis"`
}

// RedisDTO configures the Redis backend.
type RedisDTO struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ServerDTO configures the HTTP ingress.
type ServerDTO struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogDTO configures logging.
type LogDTO struct {
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
}

// fromDomain seeds a Planarfile with cfg so unmarshalling only overrides
// the keys a file actually sets.
func fromDomain(cfg *domain.Config) Planarfile {
	return Planarfile{
		Version:      currentVersion,
		Workers:      cfg.Workers,
		QueueDepth:   cfg.QueueDepth,
		Timeout:      cfg.Timeout,
		MaxBatchSize: cfg.MaxBatchSize,
		Limits:       LimitsDTO{MaxNodes: cfg.Limits.MaxNodes, MaxEdges: cfg.Limits.MaxEdges},
		Retry: RetryDTO{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		},
		Cache: CacheDTO{
			Backend:        string(cfg.Cache.Backend),
			MaxEntries:     cfg.Cache.MaxEntries,
			TTL:            cfg.Cache.TTL,
			WriteTimeout:   cfg.Cache.WriteTimeout,
			WriteBackOnHit: cfg.Cache.WriteBackOnHit,
			Dir:            cfg.Cache.Dir,
			Redis: RedisDTO{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
				Prefix:   cfg.Cache.Redis.Prefix,
			},
		},
		Server: ServerDTO{Addr: cfg.Server.Addr, CORSOrigins: cfg.Server.CORSOrigins},
		Log:    LogDTO{JSON: cfg.Log.JSON, Verbose: cfg.Log.Verbose},
	}
}

func (p *Planarfile) toDomain(root string) *domain.Config {
	return &domain.Config{
		Root:         root,
		Workers:      p.Workers,
		QueueDepth:   p.QueueDepth,
		Timeout:      p.Timeout,
		MaxBatchSize: p.MaxBatchSize,
		Limits:       domain.Limits{MaxNodes: p.Limits.MaxNodes, MaxEdges: p.Limits.MaxEdges},
		Retry: domain.RetryConfig{
			MaxAttempts:     p.Retry.MaxAttempts,
			InitialInterval: p.Retry.InitialInterval,
			MaxInterval:     p.Retry.MaxInterval,
		},
		Cache: domain.CacheConfig{
			Backend:        domain.CacheBackend(p.Cache.Backend),
			MaxEntries:     p.Cache.MaxEntries,
			TTL:            p.Cache.TTL,
			WriteTimeout:   p.Cache.WriteTimeout,
			WriteBackOnHit: p.Cache.WriteBackOnHit,
			Dir:            p.Cache.Dir,
			Redis: domain.RedisConfig{
				Addr:     p.Cache.Redis.Addr,
				Password: p.Cache.Redis.Password,
				DB:       p.Cache.Redis.DB,
				Prefix:   p.Cache.Redis.Prefix,
			},
		},
		Server: domain.ServerConfig{Addr: p.Server.Addr, CORSOrigins: p.Server.CORSOrigins},
		Log:    domain.LogConfig{JSON: p.Log.JSON, Verbose: p.Log.Verbose},
	}
}
