// Package style holds the colors and glyphs used by respawn's log output.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Iris   = lipgloss.Color("#8B5CF6")
)

// Glyphs.
const (
	Cross   = "✗"
	Warning = "!"
)
