package race

import (
	"context"
	"sync"

	"go.trai.ch/planar/internal/core/domain"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Flight deduplicates requests within one batch. The first request for a
// fingerprint leads and runs the race; every later request for the same
// fingerprint, concurrent or not, receives the leader's outcome marked Shared.
//
// A Flight also bounds its own pool submissions to the pool's queue depth, so
// a batch waits for capacity instead of rejecting itself with backpressure.
type Flight struct {
	c       *Coordinator
	group   singleflight.Group
	settled sync.Map // domain.Fingerprint -> settledCall
	slots   *semaphore.Weighted
}

type settledCall struct {
	out domain.Outcome
	err error
}

// NewFlight starts a batch-scoped deduplication table.
func (c *Coordinator) NewFlight() *Flight {
	return &Flight{c: c, slots: semaphore.NewWeighted(int64(c.flightSlots()))}
}

// Resolve returns the outcome for fp, running the race at most once per
// fingerprint for the lifetime of the Flight.
func (f *Flight) Resolve(ctx context.Context, fp domain.Fingerprint, input string) (domain.Outcome, error) {
	if s, ok := f.settled.Load(fp); ok {
		return f.follow(s.(settledCall))
	}

	var leader bool
	ch := f.group.DoChan(string(fp), func() (any, error) {
		// a leader may have settled between the check above and this call
		if s, ok := f.settled.Load(fp); ok {
			sc := s.(settledCall)
			return sc.out, sc.err
		}
		leader = true
		out, err := f.c.resolve(ctx, fp, input, f.slots)
		f.settled.Store(fp, settledCall{out: out, err: err})
		return out, err
	})

	select {
	case r := <-ch:
		out, _ := r.Val.(domain.Outcome)
		if leader {
			return out, r.Err
		}
		return f.follow(settledCall{out: out, err: r.Err})
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}
}

func (f *Flight) follow(s settledCall) (domain.Outcome, error) {
	f.c.metrics.Deduplicated()
	if s.err != nil {
		return domain.Outcome{}, s.err
	}
	out := s.out
	out.Shared = true
	return out, nil
}
