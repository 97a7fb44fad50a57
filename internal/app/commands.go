package app

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.trai.ch/respawn/internal/core/ports"
)

// ResetCommand typed on its own line forces a full rebuild and restart.
const ResetCommand = "rs"

// readCommands serves the terminal command channel until in is exhausted or ctx ends.
func readCommands(ctx context.Context, in io.Reader, reloader ports.Reloader, logger ports.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if strings.TrimSpace(scanner.Text()) != ResetCommand {
			continue
		}
		if err := reloader.Reset(ctx); err != nil {
			logger.Error(err)
		}
	}
}
