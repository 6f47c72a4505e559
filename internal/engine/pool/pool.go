// Package pool runs analyses on a fixed set of workers fed by a bounded FIFO queue.
package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

// Future is the pending result of a submitted analysis.
type Future struct {
	done chan struct{}
	res  *domain.PlanarityResult
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(res *domain.PlanarityResult, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// Done is closed once the analysis has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future) Result() (*domain.PlanarityResult, error) {
	return f.res, f.err
}

// Wait blocks until the analysis finishes or ctx ends.
// Abandoning a Future does not stop the analysis.
func (f *Future) Wait(ctx context.Context) (*domain.PlanarityResult, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type job struct {
	ctx   context.Context
	fp    domain.Fingerprint
	input string
	fut   *Future
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers    int
	QueueDepth int
	Queued     int
	Submitted  int64
	Completed  int64
	Rejected   int64
}

// Pool is a fixed-size worker pool. Submissions beyond the queue depth are
// rejected immediately rather than blocking the caller.
type Pool struct {
	analyzer ports.Analyzer
	workers  int
	queue    chan job
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
}

// New starts a pool of workers running analyzer. A non-positive worker
// count means one worker per CPU.
func New(analyzer ports.Analyzer, workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queueDepth = max(queueDepth, 0)

	p := &Pool{
		analyzer: analyzer,
		workers:  workers,
		queue:    make(chan job, queueDepth),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Submit enqueues an analysis of input. It never blocks: a full queue
// yields domain.ErrBackpressure. The analysis runs under ctx, so callers that
// want it to outlive their request pass a detached context.
func (p *Pool) Submit(ctx context.Context, fp domain.Fingerprint, input string) (*Future, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, domain.ErrPoolClosed
	}

	fut := newFuture()
	select {
	case p.queue <- job{ctx: ctx, fp: fp, input: input, fut: fut}:
		p.submitted.Add(1)
		return fut, nil
	default:
		p.rejected.Add(1)
		return nil, zerr.With(zerr.Wrap(domain.ErrBackpressure, "queue full"), "queue_depth", cap(p.queue))
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.queue {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	var (
		res *domain.PlanarityResult
		err error
		pc  panics.Catcher
	)
	pc.Try(func() {
		res, err = p.analyzer.Analyze(j.ctx, j.fp, j.input)
	})
	if r := pc.Recovered(); r != nil {
		res = nil
		err = zerr.With(zerr.Wrap(domain.ErrComputePanic, fmt.Sprint(r.Value)), "fingerprint", j.fp.Short())
	}
	p.completed.Add(1)
	j.fut.resolve(res, err)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:    p.workers,
		QueueDepth: cap(p.queue),
		Queued:     len(p.queue),
		Submitted:  p.submitted.Load(),
		Completed:  p.completed.Load(),
		Rejected:   p.rejected.Load(),
	}
}

// Close stops accepting work, lets queued analyses finish and waits for the
// workers to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
