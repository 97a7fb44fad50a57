package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/respawn/internal/core/ports"
)

// NewProvider returns an SDK tracer provider that reports finished spans
// through logger.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewLogProcessor(logger)),
	)
}
