package supervisor

import (
	"io"
	"net"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"

	"github.com/creack/pty"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/zerr"
)

// process is one spawned child. It leads its own process group.
type process struct {
	cmd     *exec.Cmd
	pid     int
	channel net.Conn
	ptmx    *os.File

	// killed is set when the supervisor terminates the child, so the exit is not
	// reported as a crash.
	killed atomic.Bool
	done   chan struct{}
	ioDone chan struct{}
	err    error
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// spawn starts the configured command with the relay channel on fd 3.
func (s *Supervisor) spawn() (*process, error) {
	channel, childEnd, err := socketPair()
	if err != nil {
		return nil, err
	}
	defer func() { _ = childEnd.Close() }()

	env := s.cfg.Env
	env.ParentPID = os.Getpid()
	env.ChannelFD = ChildChannelFD

	base := s.cfg.BaseEnv
	if base == nil {
		base = os.Environ()
	}

	name, args := s.cfg.Command[0], s.cfg.Command[1:]
	cmd := exec.Command(name, args...) //nolint:gosec // the supervised command is the user's own
	cmd.Dir = s.cfg.Dir
	cmd.Env = domain.MergeEnv(base, env.Environ())
	cmd.ExtraFiles = []*os.File{childEnd}

	p := &process{cmd: cmd, channel: channel, done: make(chan struct{})}

	if s.cfg.PTY {
		// pty.Start makes the child a session leader, which also leads its group.
		ptmx, err := pty.Start(cmd)
		if err != nil {
			_ = channel.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "command", name)
		}
		p.ptmx = ptmx
		p.ioDone = make(chan struct{})
		go func() {
			defer close(p.ioDone)
			_, _ = io.Copy(s.stdout(), ptmx)
		}()
	} else {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if s.cfg.Stdin != nil {
			cmd.Stdin = s.cfg.Stdin
		}
		cmd.Stdout = s.stdout()
		cmd.Stderr = s.stderr()
		if err := cmd.Start(); err != nil {
			_ = channel.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "command", name)
		}
	}

	p.pid = cmd.Process.Pid
	return p, nil
}

func (s *Supervisor) stdout() io.Writer {
	if s.cfg.Stdout == nil {
		return io.Discard
	}
	return s.cfg.Stdout
}

func (s *Supervisor) stderr() io.Writer {
	if s.cfg.Stderr == nil {
		return io.Discard
	}
	return s.cfg.Stderr
}

// pumpInput copies stdin into the current child's terminal for the lifetime of the
// supervisor. It is only used in PTY mode.
func (s *Supervisor) pumpInput() {
	buf := make([]byte, 4096)
	for {
		n, err := s.cfg.Stdin.Read(buf)
		if n > 0 {
			if p := s.current.Load(); p != nil && p.ptmx != nil && !p.exited() {
				_, _ = p.ptmx.Write(buf[:n])
			}
		}
		if err != nil {
			return
		}
	}
}
