package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/respawn/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		goldenName string
	}{
		{name: "info", level: slog.LevelInfo, goldenName: "handler_info"},
		{name: "warn", level: slog.LevelWarn, goldenName: "handler_warn"},
		{name: "error", level: slog.LevelError, goldenName: "handler_error"},
		{name: "debug filtered", level: slog.LevelDebug, goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, "message")

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	var h slog.Handler = logger.NewPrettyHandler(buf, nil)
	h = h.WithAttrs([]slog.Attr{slog.Int("pid", 42)})
	h = h.WithGroup("child")

	slog.New(h).Info("started", "attempt", 2)

	assert.Equal(t, "[respawn] started child.pid=42 child.attempt=2\n", buf.String())
}

func TestPrettyHandler_WithAttrsDoesNotLeak(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	base := logger.NewPrettyHandler(buf, nil)
	_ = base.WithAttrs([]slog.Attr{slog.String("k", "v")})

	slog.New(base).Info("plain")

	assert.Equal(t, "[respawn] plain\n", buf.String())
}
