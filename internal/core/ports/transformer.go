package ports

import (
	"context"

	"go.trai.ch/respawn/internal/core/domain"
)

// Transformer is the black-box compiler engine: source path and options in,
// compiled text and destination path out.
//
//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks
type Transformer interface {
	Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error)
}
