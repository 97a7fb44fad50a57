package ports

import (
	"context"

	"go.trai.ch/respawn/internal/core/domain"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// CompileEngine manages incremental build groups and their artifacts.
type CompileEngine interface {
	// Compile builds the group owning file if needed and returns its destination map.
	Compile(ctx context.Context, file string) (domain.DestinationMap, error)
	// FileGroup returns the destination map of the group owning file without building.
	// It returns domain.ErrUnbuilt when no valid group holds an artifact for file.
	FileGroup(file string) (domain.DestinationMap, error)
	// Invalidate marks file dirty and evicts its cached artifact.
	Invalidate(file string)
	// InvalidateBuildSet discards every build group.
	InvalidateBuildSet()
	// Rebuild recompiles every file marked dirty since the last rebuild.
	Rebuild(ctx context.Context) error
}

// Reloader batches change events into reload cycles.
type Reloader interface {
	// EnqueueReload adds path to the pending batch and restarts the debounce window.
	EnqueueReload(path string, requiresInvalidation bool)
	// ReloadNow runs one reload cycle with the pending batch.
	ReloadNow(ctx context.Context) error
	// Reset forces an invalidating reload cycle immediately.
	Reset(ctx context.Context) error
}
