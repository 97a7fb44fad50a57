package transform

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/respawn/internal/adapters/logger"
	"go.trai.ch/respawn/internal/core/ports"
)

// NodeID is the unique identifier for the transformer Graft node.
const NodeID graft.ID = "adapter.transformer"

func init() {
	graft.Register(graft.Node[ports.Transformer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Transformer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
