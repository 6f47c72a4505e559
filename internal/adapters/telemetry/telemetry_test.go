package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/planar/internal/adapters/telemetry"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func TestOTelTracer_Attributes(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "planar.item",
		ports.WithAttribute("planar.fingerprint", domain.Fingerprint("abc")))
	span.SetAttribute("planar.source", "compute")
	span.SetAttribute("planar.shared", true)
	span.SetAttribute("planar.items", 3)
	span.SetAttribute("planar.elapsed", 1500*time.Millisecond)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "planar.item", spans[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("planar.fingerprint", "abc"),
		attribute.String("planar.source", "compute"),
		attribute.Bool("planar.shared", true),
		attribute.Int("planar.items", 3),
		attribute.Int64("planar.elapsed", 1500),
	}, spans[0].Attributes())
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "planar.item")
	span.RecordError(errors.New("boom"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "test", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, got)
	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := telemetry.NewMetrics()
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.CacheError()
	m.Computation()
	m.BackpressureRejection()
	m.Deduplicated()
	m.Deduplicated()
	m.Deduplicated()
	m.ObserveItem("cache", time.Millisecond)
	m.ObserveItem("compute", 20*time.Millisecond)

	expected := `
# HELP planar_cache_misses_total Cache lookups that found nothing.
# TYPE planar_cache_misses_total counter
planar_cache_misses_total 2
# HELP planar_deduplicated_total Requests that reused an in-batch result.
# TYPE planar_deduplicated_total counter
planar_deduplicated_total 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"planar_cache_misses_total", "planar_deduplicated_total"))

	count, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	// Six counters plus one histogram series per source label.
	assert.Equal(t, 8, count)
}
