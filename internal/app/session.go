package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/zerr"
)

// Session is the per-invocation context of a leader: its private socket directory
// and the cleanup callbacks that run on teardown.
type Session struct {
	Dir        string
	SocketPath string

	mu       sync.Mutex
	cleanups []func() error
	closed   bool
}

// NewSession creates a fresh temp directory holding the leader socket.
func NewSession() (*Session, error) {
	dir, err := os.MkdirTemp("", "respawn-")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create session directory")
	}
	s := &Session{
		Dir:        dir,
		SocketPath: filepath.Join(dir, domain.SocketFileName),
	}
	s.OnCleanup(func() error { return os.RemoveAll(dir) })
	return s, nil
}

// OnCleanup registers fn to run on Close. Callbacks run in reverse order of
// registration. After Close, fn runs immediately.
func (s *Session) OnCleanup(fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Close runs every cleanup callback once and joins their errors.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	var errs error
	for i := len(cleanups) - 1; i >= 0; i-- {
		errs = errors.Join(errs, cleanups[i]())
	}
	return errs
}
