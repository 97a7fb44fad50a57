package ports

import (
	"context"

	"go.trai.ch/respawn/internal/core/domain"
)

// LeaderClient is the child-side view of the leader's compile protocol.
//
//go:generate mockgen -source=leader.go -destination=mocks/mock_leader.go -package=mocks
type LeaderClient interface {
	// Compile asks the leader to build file and returns its group's destination map.
	Compile(ctx context.Context, file string) (domain.DestinationMap, error)
	// FileRequired reports files loaded by the child so the leader watches them.
	FileRequired(ctx context.Context, paths []string) error
}
