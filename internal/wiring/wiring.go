// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/planar/internal/adapters/config"
	_ "go.trai.ch/planar/internal/adapters/edgelist"
	_ "go.trai.ch/planar/internal/adapters/fingerprint"
	_ "go.trai.ch/planar/internal/adapters/logger"
	_ "go.trai.ch/planar/internal/adapters/telemetry"
	_ "go.trai.ch/planar/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/planar/internal/app"
	_ "go.trai.ch/planar/internal/engine/planarity"
)
