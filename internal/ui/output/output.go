// Package output builds termenv outputs that share one color policy across
// the leader's own log lines and anything else respawn prints itself.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Profile returns the color profile for respawn's own output.
// NO_COLOR forces plain text; otherwise the terminal is probed.
func Profile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output for w, defaulting to stderr.
// The supervised child shares the terminal, so the profile is decided once
// here instead of per writer.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(Profile()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
