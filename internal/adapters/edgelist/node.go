package edgelist

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/planar/internal/core/ports"
)

// NodeID is the unique identifier for the edge-list parser Graft node.
const NodeID graft.ID = "adapter.edgelist"

func init() {
	graft.Register(graft.Node[ports.GraphParser]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GraphParser, error) {
			return NewParser(), nil
		},
	})
}
