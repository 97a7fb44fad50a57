package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/respawn/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*LogProcessor)(nil)

// LogProcessor reports finished spans through the logger with their duration.
type LogProcessor struct {
	logger ports.Logger
}

// NewLogProcessor returns a span processor writing to logger.
func NewLogProcessor(logger ports.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

// OnStart does nothing.
func (p *LogProcessor) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span's name and duration. Failed spans are logged as warnings.
func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	took := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "unknown error"
		}
		p.logger.Warn(fmt.Sprintf("%s failed after %s: %s", s.Name(), took, desc))
		return
	}
	p.logger.Info(fmt.Sprintf("%s finished in %s", s.Name(), took))
}

// ForceFlush does nothing.
func (p *LogProcessor) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (p *LogProcessor) Shutdown(_ context.Context) error {
	return nil
}
