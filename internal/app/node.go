package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/planar/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/adapters/edgelist"    //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/adapters/fingerprint" //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/adapters/watcher"     //nolint:depguard // Wired in app layer
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/engine/planarity"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fingerprint.NodeID,
			edgelist.NodeID,
			planarity.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			telemetry.MetricsNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	parser, err := graft.Dep[ports.GraphParser](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[*planarity.Engine](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	metrics, err := graft.Dep[*telemetry.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, fingerprinter, parser, engine, log, tracer, metrics, w), nil
}
