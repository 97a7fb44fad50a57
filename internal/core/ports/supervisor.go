package ports

import (
	"context"
	"os"
)

// Supervisor owns the lifecycle of the supervised child process.
//
//go:generate mockgen -source=supervisor.go -destination=mocks/mock_supervisor.go -package=mocks
type Supervisor interface {
	// Restart kills any running child without grace and spawns a new one.
	Restart(ctx context.Context) error
	// Stop signals the child with sig, escalating to SIGKILL after the grace window.
	Stop(ctx context.Context, sig os.Signal) error
}
