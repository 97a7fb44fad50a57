// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/respawn/internal/adapters/config"
	_ "go.trai.ch/respawn/internal/adapters/logger"
	_ "go.trai.ch/respawn/internal/adapters/telemetry"
	_ "go.trai.ch/respawn/internal/adapters/transform"
	_ "go.trai.ch/respawn/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/respawn/internal/app"
)
