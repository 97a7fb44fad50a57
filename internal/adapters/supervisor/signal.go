package supervisor

import (
	"errors"
	"os"
	"syscall"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// isGone reports whether a kill error means the target no longer exists.
func isGone(err error) bool {
	return errors.Is(err, unix.ESRCH) || errors.Is(err, unix.EPERM) || errors.Is(err, os.ErrProcessDone)
}

// killGroup SIGKILLs the whole process group led by pid.
func killGroup(pid int) error {
	return signalTarget(-pid, unix.SIGKILL)
}

// signalChild delivers sig to pid alone.
func signalChild(pid int, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		s = unix.SIGTERM
	}
	return signalTarget(pid, s)
}

func signalTarget(target int, sig syscall.Signal) error {
	if target == 0 || target == -1 {
		return nil
	}
	if err := unix.Kill(target, sig); err != nil && !isGone(err) {
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrProcessSignalFailed.Error()), "target", target), "signal", sig.String())
	}
	return nil
}

// processAlive probes pid with signal 0. EPERM means it exists under another owner.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
