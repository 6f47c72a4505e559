package race_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/core/ports/mocks"
	"go.trai.ch/planar/internal/engine/pool"
	"go.trai.ch/planar/internal/engine/race"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type raceMocks struct {
	cache    *mocks.MockResultCache
	analyzer *mocks.MockAnalyzer
	logger   *mocks.MockLogger
	metrics  *mocks.MockMetrics
}

type fixture struct {
	coord *race.Coordinator
	pool  *pool.Pool
	m     raceMocks
}

// close drains background race sides and stops the pool.
func (f *fixture) close() {
	f.coord.Drain()
	f.pool.Close()
}

func setup(t *testing.T, opts race.Options, workers, queueDepth int) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := raceMocks{
		cache:    mocks.NewMockResultCache(ctrl),
		analyzer: mocks.NewMockAnalyzer(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		metrics:  mocks.NewMockMetrics(ctrl),
	}

	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	// Counters are asserted per test where they matter.
	m.metrics.EXPECT().ObserveItem(gomock.Any(), gomock.Any()).AnyTimes()

	p := pool.New(m.analyzer, workers, queueDepth)
	return &fixture{
		coord: race.New(m.cache, p, m.logger, m.metrics, tracer, opts),
		pool:  p,
		m:     m,
	}
}

func result(fp domain.Fingerprint) *domain.PlanarityResult {
	return &domain.PlanarityResult{Fingerprint: fp, IsPlanar: true}
}

// blockUntilDone is a cache Get that only returns when the race gives up on it.
func blockUntilDone(ctx context.Context, _ domain.Fingerprint) (*domain.PlanarityResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolve_CacheHitWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		cached := result("fp")
		release := make(chan struct{})
		f.m.cache.EXPECT().Get(gomock.Any(), domain.Fingerprint("fp")).Return(cached, nil)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
				<-release
				return result("fp"), nil
			},
		).MaxTimes(1)
		f.m.metrics.EXPECT().CacheHit().Times(1)
		f.m.metrics.EXPECT().Computation().MaxTimes(1)

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCache, out.Source)
		assert.Same(t, cached, out.Result)
		assert.False(t, out.Shared)

		close(release)
	})
}

func TestResolve_ComputeWinsAndWritesBackFirst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{WriteTimeout: time.Second}, 1, 1)
		defer f.close()

		computed := result("fp")
		var written atomic.Bool
		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), domain.Fingerprint("fp"), "A-B").Return(computed, nil)
		f.m.cache.EXPECT().Put(gomock.Any(), domain.Fingerprint("fp"), computed).DoAndReturn(
			func(context.Context, domain.Fingerprint, *domain.PlanarityResult) error {
				written.Store(true)
				return nil
			},
		).Times(1)
		f.m.metrics.EXPECT().Computation().Times(1)

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCompute, out.Source)
		assert.Same(t, computed, out.Result)
		assert.True(t, written.Load(), "write-back must precede the outcome")
	})
}

func TestResolve_CacheMissThenCompute(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return(result("fp"), nil)
		f.m.metrics.EXPECT().CacheMiss().Times(1)
		f.m.metrics.EXPECT().Computation().Times(1)

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCompute, out.Source)
	})
}

func TestResolve_WriteBackOnHit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{WriteBackOnHit: true}, 1, 1)

		release := make(chan struct{})
		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(result("fp"), nil)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
				<-release
				return result("fp"), nil
			},
		)
		f.m.cache.EXPECT().Put(gomock.Any(), domain.Fingerprint("fp"), gomock.Any()).Return(nil).Times(1)
		f.m.metrics.EXPECT().CacheHit()
		f.m.metrics.EXPECT().Computation()

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCache, out.Source)

		close(release)
		f.close()
	})
}

func TestResolve_CacheErrorIsAMiss(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheUnavailable)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrCacheUnavailable)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return(result("fp"), nil)
		f.m.metrics.EXPECT().CacheError().Times(2)
		f.m.metrics.EXPECT().Computation()
		f.m.logger.EXPECT().Warn("cache lookup failed", gomock.Any()).Times(1)
		f.m.logger.EXPECT().Warn("cache write-back failed", gomock.Any()).Times(1)

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err, "cache failures never fail a request")
		assert.Equal(t, domain.SourceCompute, out.Source)
	})
}

func TestResolve_BothFailReportsComputeError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrParse)
		f.m.metrics.EXPECT().CacheMiss()

		_, err := f.coord.Resolve(context.Background(), "fp", "A-")
		require.ErrorIs(t, err, domain.ErrParse)
	})
}

func TestResolve_TimeoutStillWritesBackLateResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{Timeout: time.Second}, 1, 1)

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
				time.Sleep(5 * time.Second)
				return result("slow"), nil
			},
		)
		f.m.metrics.EXPECT().Computation()
		f.m.cache.EXPECT().Put(gomock.Any(), domain.Fingerprint("slow"), gomock.Any()).Return(nil).Times(1)

		start := time.Now()
		_, err := f.coord.Resolve(context.Background(), "slow", "A-B")
		require.ErrorIs(t, err, domain.ErrTimeout)
		assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
		assert.Equal(t, time.Second, time.Since(start))

		f.close()
	})
}

func TestResolve_ParentCanceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{Timeout: time.Minute}, 1, 1)

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
				time.Sleep(time.Second)
				return result("fp"), nil
			},
		)
		f.m.metrics.EXPECT().Computation()
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := f.coord.Resolve(ctx, "fp", "A-B")
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.KindCanceled, domain.KindOf(err))

		f.close()
	})
}

// occupy parks the single worker of f's pool on a job until release closes.
func occupy(t *testing.T, f *fixture, release <-chan struct{}) {
	t.Helper()
	f.m.analyzer.EXPECT().Analyze(gomock.Any(), domain.Fingerprint("busy"), gomock.Any()).DoAndReturn(
		func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
			<-release
			return result("busy"), nil
		},
	)
	synctest.Wait()
	_, err := f.pool.Submit(context.Background(), "busy", "")
	require.NoError(t, err)
	synctest.Wait()
}

func TestResolve_BackpressureExhaustsRetries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		retry := domain.RetryConfig{MaxAttempts: 3, InitialInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond}
		f := setup(t, race.Options{Retry: retry}, 1, 0)
		release := make(chan struct{})
		occupy(t, f, release)

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.m.metrics.EXPECT().CacheMiss()
		f.m.metrics.EXPECT().BackpressureRejection().Times(3)

		_, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.ErrorIs(t, err, domain.ErrBackpressure)
		assert.Equal(t, domain.KindBackpressure, domain.KindOf(err))

		close(release)
		f.close()
	})
}

func TestResolve_BackpressureRetrySucceeds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		retry := domain.RetryConfig{MaxAttempts: 10, InitialInterval: 10 * time.Millisecond, MaxInterval: 20 * time.Millisecond}
		f := setup(t, race.Options{Retry: retry}, 1, 0)
		release := make(chan struct{})
		occupy(t, f, release)

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.m.metrics.EXPECT().CacheMiss()
		f.m.metrics.EXPECT().BackpressureRejection().MinTimes(1)
		f.m.metrics.EXPECT().Computation()
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), domain.Fingerprint("fp"), gomock.Any()).Return(result("fp"), nil)

		go func() {
			time.Sleep(15 * time.Millisecond)
			close(release)
		}()

		out, err := f.coord.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCompute, out.Source)
		f.close()
	})
}

func TestFlight_DeduplicatesConcurrentRequests(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 2, 8)
		defer f.close()

		const n = 5
		release := make(chan struct{})
		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.Fingerprint, string) (*domain.PlanarityResult, error) {
				<-release
				return result("dup"), nil
			},
		).Times(1)
		f.m.metrics.EXPECT().CacheMiss()
		f.m.metrics.EXPECT().Computation()
		f.m.metrics.EXPECT().Deduplicated().Times(n - 1)

		flight := f.coord.NewFlight()
		outs := make([]domain.Outcome, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := flight.Resolve(context.Background(), "dup", "A-B")
				assert.NoError(t, err)
				outs[i] = out
			}()
		}
		synctest.Wait()
		close(release)
		wg.Wait()

		shared := 0
		for _, out := range outs {
			assert.Equal(t, domain.SourceCompute, out.Source)
			if out.Shared {
				shared++
			}
		}
		assert.Equal(t, n-1, shared)
	})
}

func TestFlight_RemembersSettledOutcomes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
		f.m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return(result("fp"), nil).Times(1)
		f.m.metrics.EXPECT().CacheMiss()
		f.m.metrics.EXPECT().Computation()
		f.m.metrics.EXPECT().Deduplicated().Times(1)

		flight := f.coord.NewFlight()
		first, err := flight.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.False(t, first.Shared)

		second, err := flight.Resolve(context.Background(), "fp", "A-B")
		require.NoError(t, err)
		assert.True(t, second.Shared)
		assert.Same(t, first.Result, second.Result)
	})
}

func TestFlight_SharesErrors(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := setup(t, race.Options{}, 1, 1)
		defer f.close()

		f.m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
		f.m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrParse).Times(1)
		f.m.metrics.EXPECT().CacheMiss()
		f.m.metrics.EXPECT().Deduplicated()

		flight := f.coord.NewFlight()
		_, err := flight.Resolve(context.Background(), "bad", "A-")
		require.ErrorIs(t, err, domain.ErrParse)
		_, err = flight.Resolve(context.Background(), "bad", "A-")
		require.ErrorIs(t, err, domain.ErrParse)
	})
}
