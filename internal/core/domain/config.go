package domain

import (
	"runtime"
	"time"
)

// CacheBackend selects the result cache implementation.
type CacheBackend string

const (
	// CacheMemory keeps results in process.
	CacheMemory CacheBackend = "memory"
	// CacheDisk keeps one JSON file per fingerprint under a directory.
	CacheDisk CacheBackend = "disk"
	// CacheRedis keeps results in a Redis server.
	CacheRedis CacheBackend = "redis"
	// CacheNone disables caching; every lookup misses.
	CacheNone CacheBackend = "none"
)

// Config is the effective pipeline configuration.
type Config struct {
	// Root is the directory holding the config file, or the working
	// directory when there is none. Relative paths resolve against it.
	Root string

	Workers      int
	QueueDepth   int
	Timeout      time.Duration
	MaxBatchSize int
	Limits       Limits
	Retry        RetryConfig
	Cache        CacheConfig
	Server       ServerConfig
	Log          LogConfig
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON    bool
	Verbose bool
}

// Limits bounds the size of graphs the compute path accepts.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

// RetryConfig controls resubmission of items rejected by a saturated pool.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Backend        CacheBackend
	MaxEntries     int64
	TTL            time.Duration
	WriteTimeout   time.Duration
	WriteBackOnHit bool
	Dir            string
	Redis          RedisConfig
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// ServerConfig configures the HTTP ingress.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		QueueDepth:   1024,
		Timeout:      30 * time.Second,
		MaxBatchSize: 10000,
		Limits: Limits{
			MaxNodes: 5000,
			MaxEdges: 20000,
		},
		Retry: RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend:      CacheMemory,
			WriteTimeout: 2 * time.Second,
			Dir:          DefaultCacheDir,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: DefaultRedisPrefix,
			},
		},
		Server: ServerConfig{
			Addr: ":8000",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
	}
}
