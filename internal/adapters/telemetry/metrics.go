package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/planar/internal/core/ports"
)

const namespace = "planar"

// Metrics implements ports.Metrics with Prometheus collectors registered on
// a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheErrors  prometheus.Counter
	computations prometheus.Counter
	rejections   prometheus.Counter
	deduplicated prometheus.Counter
	itemDuration *prometheus.HistogramVec
}

var _ ports.Metrics = (*Metrics)(nil)

// NewMetrics creates the pipeline collectors on a fresh registry.
func NewMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		registry:     prometheus.NewRegistry(),
		cacheHits:    counter("cache_hits_total", "Requests answered by the result cache."),
		cacheMisses:  counter("cache_misses_total", "Cache lookups that found nothing."),
		cacheErrors:  counter("cache_errors_total", "Cache lookups or write-backs that failed."),
		computations: counter("computations_total", "Planarity computations completed by the worker pool."),
		rejections:   counter("backpressure_rejections_total", "Pool submissions rejected because the queue was full."),
		deduplicated: counter("deduplicated_total", "Requests that reused an in-batch result."),
		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_duration_seconds",
			Help:      "Time to resolve one batch item, by winning source.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.cacheErrors,
		m.computations,
		m.rejections,
		m.deduplicated,
		m.itemDuration,
	)
	return m
}

// Registry returns the registry holding the pipeline collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheHit counts a cache hit.
func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// CacheMiss counts a cache miss.
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }

// CacheError counts a failed cache operation.
func (m *Metrics) CacheError() { m.cacheErrors.Inc() }

// Computation counts a finished computation.
func (m *Metrics) Computation() { m.computations.Inc() }

// BackpressureRejection counts a rejected submission.
func (m *Metrics) BackpressureRejection() { m.rejections.Inc() }

// Deduplicated counts a request served by another request of the same batch.
func (m *Metrics) Deduplicated() { m.deduplicated.Inc() }

// ObserveItem records how long an item took to resolve.
func (m *Metrics) ObserveItem(source string, d time.Duration) {
	m.itemDuration.WithLabelValues(source).Observe(d.Seconds())
}
