// Package app implements the application layer for planar.
package app

import (
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/planar/internal/adapters/cache"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/engine/analyzer"
	"go.trai.ch/planar/internal/engine/batch"
	"go.trai.ch/planar/internal/engine/planarity"
	"go.trai.ch/planar/internal/engine/pool"
	"go.trai.ch/planar/internal/engine/race"
	"go.trai.ch/zerr"
)

// logControl is implemented by loggers whose mode can change at runtime.
type logControl interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// MetricsRegistry records pipeline metrics and exposes them for scraping.
type MetricsRegistry interface {
	ports.Metrics
	Registry() *prometheus.Registry
}

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	fingerprinter ports.Fingerprinter
	parser        ports.GraphParser
	engine        *planarity.Engine
	logger        ports.Logger
	tracer        ports.Tracer
	metrics       MetricsRegistry
	watcher       ports.Watcher

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fingerprinter ports.Fingerprinter,
	parser ports.GraphParser,
	engine *planarity.Engine,
	log ports.Logger,
	tracer ports.Tracer,
	metrics MetricsRegistry,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader:  loader,
		fingerprinter: fingerprinter,
		parser:        parser,
		engine:        engine,
		logger:        log,
		tracer:        tracer,
		metrics:       metrics,
		watcher:       watcher,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// WithIO replaces the process streams. This is primarily used for testing.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// GlobalOptions are shared by every command.
type GlobalOptions struct {
	// ConfigFile selects an explicit config file instead of discovery.
	ConfigFile string
	// Verbose enables debug logging.
	Verbose bool
}

// PipelineOptions override configuration values for one invocation.
// Zero values keep the configured setting.
type PipelineOptions struct {
	GlobalOptions

	NoCache bool
	Workers int
	Timeout time.Duration
}

func (a *App) loadConfig(opts PipelineOptions) (*domain.Config, error) {
	if lc, ok := a.logger.(logControl); ok {
		lc.SetVerbose(opts.Verbose)
	}

	var (
		cfg *domain.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = a.configLoader.LoadFile(opts.ConfigFile)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		cfg, err = a.configLoader.Load(cwd)
	}
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if lc, ok := a.logger.(logControl); ok && cfg.Log.Verbose {
		lc.SetVerbose(true)
	}
	if opts.NoCache {
		cfg.Cache.Backend = domain.CacheNone
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	return cfg, nil
}

// pipeline owns the per-invocation processing stack.
type pipeline struct {
	processor *batch.Processor
	coord     *race.Coordinator
	pool      *pool.Pool
	store     cache.Store
}

func (a *App) openPipeline(cfg *domain.Config) (*pipeline, error) {
	store, err := cache.New(cfg.Cache, cfg.Root)
	if err != nil {
		return nil, err
	}

	an := analyzer.New(a.parser, a.engine, cfg.Limits)
	workers := pool.New(an, cfg.Workers, cfg.QueueDepth)
	coord := race.New(store, workers, a.logger, a.metrics, a.tracer, race.OptionsFromConfig(cfg))

	a.logger.Debug("pipeline ready",
		"cache", string(cfg.Cache.Backend),
		"workers", workers.Stats().Workers,
		"queue_depth", cfg.QueueDepth,
	)

	return &pipeline{
		processor: batch.New(a.fingerprinter, coord, a.logger, a.tracer, cfg.MaxBatchSize),
		coord:     coord,
		pool:      workers,
		store:     store,
	}, nil
}

// Close waits for outstanding computations and write-backs, then releases
// the pool and the cache.
func (p *pipeline) Close() error {
	p.coord.Drain()
	p.pool.Close()
	if err := p.store.Close(); err != nil {
		return zerr.Wrap(err, "failed to close result cache")
	}
	return nil
}
