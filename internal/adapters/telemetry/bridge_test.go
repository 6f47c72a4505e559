package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/planar/internal/adapters/telemetry"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_LogsFinishedSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var got []any
	logger.EXPECT().Debug("span finished", gomock.Any()).Do(func(_ string, args ...any) {
		got = args
	}).Times(1)

	tp := trace.NewTracerProvider(trace.WithSpanProcessor(telemetry.NewBridge(logger)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := telemetry.NewOTelTracer("test").Start(context.Background(), "planar.item",
		ports.WithAttribute("planar.source", "cache"))
	span.RecordError(errors.New("boom"))
	span.End()

	require.GreaterOrEqual(t, len(got), 8)
	assert.Equal(t, []any{"span", "planar.item"}, got[:2])
	assert.Contains(t, got, "planar.source")
	assert.Contains(t, got, "cache")
	assert.Equal(t, []any{"error", "boom"}, got[len(got)-2:])
}

func TestInstall_SetsGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown := telemetry.Install(telemetry.NewBridge(nil))
	_, ok := otel.GetTracerProvider().(*trace.TracerProvider)
	assert.True(t, ok)
	require.NoError(t, shutdown(context.Background()))
}
