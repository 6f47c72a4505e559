// Package race resolves requests by racing a cache lookup against a pooled
// computation. The first successful side wins; computed results are written
// back to the cache before they are returned.
package race

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/engine/pool"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// Options tunes a Coordinator.
type Options struct {
	// Timeout is the per-request deadline. Zero disables it.
	Timeout time.Duration
	// WriteTimeout bounds a single cache write-back. Zero disables it.
	WriteTimeout time.Duration
	// WriteBackOnHit also writes a computed result back when the cache
	// already answered the request.
	WriteBackOnHit bool
	// Retry controls resubmission after backpressure.
	Retry domain.RetryConfig
}

// OptionsFromConfig extracts coordinator options from the pipeline config.
func OptionsFromConfig(cfg *domain.Config) Options {
	return Options{
		Timeout:        cfg.Timeout,
		WriteTimeout:   cfg.Cache.WriteTimeout,
		WriteBackOnHit: cfg.Cache.WriteBackOnHit,
		Retry:          cfg.Retry,
	}
}

// Coordinator runs the cache/compute race for single requests.
type Coordinator struct {
	cache   ports.ResultCache
	pool    *pool.Pool
	logger  ports.Logger
	metrics ports.Metrics
	tracer  ports.Tracer
	opts    Options

	// background tracks both sides of every race, including losers.
	background sync.WaitGroup
}

// New creates a new Coordinator.
func New(
	cache ports.ResultCache,
	workers *pool.Pool,
	logger ports.Logger,
	metrics ports.Metrics,
	tracer ports.Tracer,
	opts Options,
) *Coordinator {
	return &Coordinator{
		cache:   cache,
		pool:    workers,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		opts:    opts,
	}
}

type reply struct {
	res *domain.PlanarityResult
	err error
}

// Resolve produces the result for one request.
func (c *Coordinator) Resolve(ctx context.Context, fp domain.Fingerprint, input string) (domain.Outcome, error) {
	return c.resolve(ctx, fp, input, nil)
}

// flightSlots is how many submissions one batch may keep in the pool. Staying
// within the queue depth means the queue never fills from one batch alone.
func (c *Coordinator) flightSlots() int {
	st := c.pool.Stats()
	if st.QueueDepth > 0 {
		return st.QueueDepth
	}
	return st.Workers
}

func (c *Coordinator) resolve(
	ctx context.Context,
	fp domain.Fingerprint,
	input string,
	slots *semaphore.Weighted,
) (domain.Outcome, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "planar.item", ports.WithAttribute("planar.fingerprint", fp.Short()))
	defer span.End()

	out, err := c.race(ctx, fp, input, slots)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveItem("error", time.Since(start))
		return domain.Outcome{}, err
	}

	span.SetAttribute("planar.source", string(out.Source))
	c.metrics.ObserveItem(string(out.Source), time.Since(start))
	return out, nil
}

func (c *Coordinator) race(
	parent context.Context,
	fp domain.Fingerprint,
	input string,
	slots *semaphore.Weighted,
) (domain.Outcome, error) {
	// Losing sides see ctx canceled once the race is decided.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	if c.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancelTimeout()
	}

	var hit atomic.Bool
	cacheCh := make(chan reply, 1)
	computeCh := make(chan reply, 1)

	c.background.Add(2)
	go c.lookup(ctx, fp, &hit, cacheCh)
	go c.compute(ctx, fp, input, slots, &hit, computeCh)

	var (
		cachePending   = true
		computePending = true
		computeErr     error
	)
	for cachePending || computePending {
		select {
		case r := <-cacheCh:
			cachePending = false
			if r.res != nil {
				return domain.Outcome{Result: r.res, Source: domain.SourceCache}, nil
			}
		case r := <-computeCh:
			computePending = false
			if r.err == nil {
				return domain.Outcome{Result: r.res, Source: domain.SourceCompute}, nil
			}
			computeErr = r.err
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return domain.Outcome{}, err
			}
			err := zerr.Wrap(domain.ErrTimeout, "no result before deadline")
			return domain.Outcome{}, zerr.With(err, "timeout", c.opts.Timeout.String())
		}
	}
	return domain.Outcome{}, computeErr
}

// lookup is the cache side. Failures count as misses.
func (c *Coordinator) lookup(ctx context.Context, fp domain.Fingerprint, hit *atomic.Bool, out chan<- reply) {
	defer c.background.Done()

	res, err := c.cache.Get(ctx, fp)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			// the race is already over
			out <- reply{}
			return
		}
		c.metrics.CacheError()
		c.logger.Warn("cache lookup failed", "fingerprint", fp.Short(), "error", err.Error())
		out <- reply{}
	case res == nil:
		c.metrics.CacheMiss()
		out <- reply{}
	default:
		hit.Store(true)
		c.metrics.CacheHit()
		out <- reply{res: res}
	}
}

// compute is the pool side. Once submitted, the analysis runs detached from
// the request so a late result still reaches the cache. When slots is set, a
// slot is held from submission until the analysis finishes.
func (c *Coordinator) compute(
	ctx context.Context,
	fp domain.Fingerprint,
	input string,
	slots *semaphore.Weighted,
	hit *atomic.Bool,
	out chan<- reply,
) {
	defer c.background.Done()

	release := func() {}
	if slots != nil {
		if err := slots.Acquire(ctx, 1); err != nil {
			out <- reply{err: err}
			return
		}
		release = func() { slots.Release(1) }
	}

	detached := context.WithoutCancel(ctx)
	fut, err := c.submit(ctx, detached, fp, input)
	if err != nil {
		release()
		out <- reply{err: err}
		return
	}

	res, err := fut.Wait(detached)
	release()
	if err != nil {
		out <- reply{err: err}
		return
	}
	c.metrics.Computation()

	if !hit.Load() || c.opts.WriteBackOnHit {
		c.writeBack(detached, fp, res)
	}
	out <- reply{res: res}
}

// submit hands the request to the pool, retrying with exponential backoff
// while the pool reports backpressure.
func (c *Coordinator) submit(ctx, detached context.Context, fp domain.Fingerprint, input string) (*pool.Future, error) {
	var fut *pool.Future
	op := func() error {
		f, err := c.pool.Submit(detached, fp, input)
		if err == nil {
			fut = f
			return nil
		}
		if errors.Is(err, domain.ErrBackpressure) {
			c.metrics.BackpressureRejection()
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, c.backoff(ctx)); err != nil {
		return nil, err
	}
	return fut, nil
}

func (c *Coordinator) backoff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	if c.opts.Retry.InitialInterval > 0 {
		exp.InitialInterval = c.opts.Retry.InitialInterval
	}
	if c.opts.Retry.MaxInterval > 0 {
		exp.MaxInterval = c.opts.Retry.MaxInterval
	}
	exp.MaxElapsedTime = 0

	retries := max(c.opts.Retry.MaxAttempts-1, 0)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func (c *Coordinator) writeBack(ctx context.Context, fp domain.Fingerprint, res *domain.PlanarityResult) {
	if c.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.WriteTimeout)
		defer cancel()
	}
	if err := c.cache.Put(ctx, fp, res); err != nil {
		c.metrics.CacheError()
		c.logger.Warn("cache write-back failed", "fingerprint", fp.Short(), "error", err.Error())
	}
}

// Drain waits until every race side started so far has finished, including
// computations that lost their race and are still writing back.
func (c *Coordinator) Drain() {
	c.background.Wait()
}
