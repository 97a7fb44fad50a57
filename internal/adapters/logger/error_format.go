package logger

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks err's chain. zerr links contribute their own message and
// metadata; the first non-zerr link contributes its full text and ends the walk.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	for err != nil {
		zErr, ok := err.(*zerr.Error) //nolint:errorlint // each link is inspected on its own
		if !ok {
			entries = append(entries, ErrorEntry{Message: err.Error()})
			break
		}
		entries = append(entries, ErrorEntry{
			Message:  zErr.Message(),
			Metadata: zErr.Metadata(),
		})
		err = zErr.Unwrap()
	}
	return entries
}

const (
	headIndent  = "       "
	causeIndent = "      "
)

// formatErrorEntries renders entries as "Error: ..." followed by a "Caused by:" list.
func formatErrorEntries(entries []ErrorEntry) string {
	var b strings.Builder
	for i, entry := range entries {
		lines := strings.Split(entry.Message, "\n")
		indent := causeIndent
		switch i {
		case 0:
			b.WriteString("Error: " + lines[0])
			indent = headIndent
		case 1:
			b.WriteString("\n\n  Caused by:\n    → " + lines[0])
		default:
			b.WriteString("\n    → " + lines[0])
		}
		for _, line := range lines[1:] {
			b.WriteString("\n" + indent + line)
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			fmt.Fprintf(&b, "\n%s%s: %v", indent, key, entry.Metadata[key])
		}
	}
	return b.String()
}
