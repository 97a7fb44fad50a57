package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/respawn/internal/ui/output"
)

func TestProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.Profile())
}

func TestProfile_Detected(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	p := output.Profile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestNew_WritesThrough(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)

	styled := out.String("restarting").Foreground(termenv.ANSIRed).String()
	_, _ = out.WriteString(styled)

	assert.Equal(t, "restarting", buf.String())
}

func TestNew_NilWriter(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}
