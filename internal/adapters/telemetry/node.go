package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/planar/internal/core/ports"
)

const (
	// TracerNodeID is the unique identifier for the tracer Graft node.
	TracerNodeID graft.ID = "adapter.telemetry"
	// MetricsNodeID is the unique identifier for the metrics Graft node.
	MetricsNodeID graft.ID = "adapter.telemetry.metrics"
)

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			return NewOTelTracer("planar"), nil
		},
	})

	graft.Register(graft.Node[*Metrics]{
		ID:        MetricsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Metrics, error) {
			return NewMetrics(), nil
		},
	})
}
