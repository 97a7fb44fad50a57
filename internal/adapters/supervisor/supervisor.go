// Package supervisor owns the lifecycle of the supervised child process.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
)

// State is the supervisor's lifecycle state.
type State int32

const (
	// StateIdle means no child was ever started.
	StateIdle State = iota
	// StateStarting means a child is being spawned.
	StateStarting
	// StateRunning means the current child is alive.
	StateRunning
	// StateStopping means a graceful stop is in progress.
	StateStopping
	// StateStopped means the last child has exited.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config describes the supervised command.
type Config struct {
	Command []string
	Dir     string
	// Env is the contract advertised to the child. ParentPID and ChannelFD are
	// filled in by the supervisor.
	Env domain.ChildEnv
	// BaseEnv is the environment the contract is merged into; nil means os.Environ().
	BaseEnv []string
	// PTY runs the child on a pseudo-terminal as a session leader.
	PTY    bool
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
	// StopTimeout is the grace window before Stop escalates to SIGKILL.
	StopTimeout time.Duration
	// Upstream is this process's own relay channel. Nil drops child messages.
	Upstream net.Conn
}

const ptyDrainTimeout = 200 * time.Millisecond

var _ ports.Supervisor = (*Supervisor)(nil)

// Supervisor implements ports.Supervisor. At most one child is alive at a time.
type Supervisor struct {
	cfg    Config
	logger ports.Logger

	mu      sync.Mutex
	closed  bool // set by Stop, guarded by mu
	state   atomic.Int32
	current atomic.Pointer[process]
	upMu    sync.Mutex
}

// New creates a Supervisor. It does not start the child.
func New(cfg Config, logger ports.Logger) (*Supervisor, error) {
	if len(cfg.Command) == 0 {
		return nil, domain.ErrNoCommand
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = domain.DefaultStopTimeout
	}

	s := &Supervisor{cfg: cfg, logger: logger}
	if cfg.Upstream != nil {
		go s.relayToChild()
	}
	if cfg.PTY && cfg.Stdin != nil {
		go s.pumpInput()
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// PID returns the current child's pid, or 0 before the first start.
func (s *Supervisor) PID() int {
	if p := s.current.Load(); p != nil {
		return p.pid
	}
	return 0
}

// Done returns a channel closed when the current child exits. It is nil before
// the first start.
func (s *Supervisor) Done() <-chan struct{} {
	if p := s.current.Load(); p != nil {
		return p.done
	}
	return nil
}

// Restart SIGKILLs the current child's process group without grace, waits for the
// child to be reaped and spawns a new one. It fails once Stop has been called or
// ctx is done, and never spawns in either case.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSupervisorStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if p := s.current.Load(); p != nil {
		p.killed.Store(true)
		if err := killGroup(p.pid); err != nil {
			return err
		}
		select {
		case <-p.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.Store(int32(StateStarting))
	p, err := s.spawn()
	if err != nil {
		s.state.Store(int32(StateStopped))
		return err
	}
	s.current.Store(p)
	s.state.Store(int32(StateRunning))

	go s.wait(p)
	go s.relayFromChild(p)
	return nil
}

// Stop sends sig to the child alone and waits up to the grace window, then SIGKILLs
// the whole group. It returns immediately when no child is alive. Stop is final:
// later restarts fail with domain.ErrSupervisorStopped.
func (s *Supervisor) Stop(ctx context.Context, sig os.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	p := s.current.Load()
	if p == nil || p.exited() {
		return nil
	}

	s.state.Store(int32(StateStopping))
	p.killed.Store(true)
	if err := signalChild(p.pid, sig); err != nil {
		return err
	}

	grace := time.NewTimer(s.cfg.StopTimeout)
	defer grace.Stop()

	select {
	case <-p.done:
		return nil
	case <-grace.C:
	case <-ctx.Done():
	}

	if err := killGroup(p.pid); err != nil {
		return err
	}
	<-p.done
	return nil
}

// wait reaps p, detaches its relay channel and reports unexpected exits.
func (s *Supervisor) wait(p *process) {
	p.err = p.cmd.Wait()
	if p.ptmx != nil {
		// Drain what the child wrote before it exited. Descendants holding the
		// terminal open must not block the reap.
		select {
		case <-p.ioDone:
		case <-time.After(ptyDrainTimeout):
		}
		_ = p.ptmx.Close()
	}
	_ = p.channel.Close()

	if s.current.Load() == p {
		s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))
		s.state.CompareAndSwap(int32(StateStopping), int32(StateStopped))
	}
	close(p.done)
	if p.killed.Load() {
		return
	}
	s.reportExit(p.err)
}

func (s *Supervisor) reportExit(err error) {
	if err == nil {
		s.logger.Info("app exited cleanly, waiting for changes before restart")
		return
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			s.logger.Warn(fmt.Sprintf("app terminated by %s, waiting for changes before restart", status.Signal()))
			return
		}
		s.logger.Warn(fmt.Sprintf("app crashed with exit code %d, waiting for changes before restart", exitErr.ExitCode()))
		return
	}
	s.logger.Error(err)
}
