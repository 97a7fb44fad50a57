package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/respawn/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv(logger.EnvLogFormat, "")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		goldenName string
	}{
		{name: "restart notice", msg: "restarting due to changes", goldenName: "info_basic"},
		{name: "multiline message", msg: "line1\nline2", goldenName: "info_multiline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Info(tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("child exited with code 1")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{name: "stdlib error", err: os.ErrPermission, goldenName: "error_simple"},
		{
			name: "zerr chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("exit status 2"), "compilation failed"),
				"failed to build group",
			),
			goldenName: "error_chain_zerr",
		},
		{
			name:       "stdlib chain is one entry",
			err:        fmt.Errorf("dial: %w", errors.New("connection refused")),
			goldenName: "error_chain_stdlib",
		},
		{
			name: "metadata",
			err: zerr.With(
				zerr.With(zerr.New("file has not been built"), "file", "/app/src/a.ts"),
				"root", "/app",
			),
			goldenName: "error_metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(errors.New("boom"))
	lg.Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.NotContains(t, out, logger.Tag)
}

func TestLogger_SetJSON_PreservesOutput(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.SetJSON(false)
	lg.Info("back to pretty")

	assert.Equal(t, "[respawn] back to pretty\n", buf.String())
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	lg, _ := newTestLogger(t)
	assert.NotPanics(t, func() { lg.SetOutput(nil) })
}

func TestLogger_JSONFromEnvironment(t *testing.T) {
	t.Setenv(logger.EnvLogFormat, "json")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	lg.Info("restarting due to changes")

	assert.Contains(t, buf.String(), `"msg":"restarting due to changes"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}
