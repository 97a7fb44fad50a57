package supervisor

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultProbeInterval is how often a ParentMonitor checks its parent.
const DefaultProbeInterval = time.Second

// ParentMonitor runs inside a supervised child. When the supervising parent
// disappears it SIGKILLs the child's own process group so nothing is orphaned.
type ParentMonitor struct {
	ParentPID int
	Interval  time.Duration

	// Probe reports whether the parent is still alive. Defaults to a signal-0 probe
	// combined with a reparenting check.
	Probe func(pid int) bool
	// OnGone runs once when the parent is gone. Defaults to killing the own group.
	OnGone func()
}

// NewParentMonitor creates a monitor for ppid with the default probe and action.
func NewParentMonitor(ppid int) *ParentMonitor {
	return &ParentMonitor{
		ParentPID: ppid,
		Interval:  DefaultProbeInterval,
		Probe:     parentAlive,
		OnGone:    killOwnGroup,
	}
}

// Run probes until the parent is gone or ctx ends. It reports whether OnGone ran.
func (m *ParentMonitor) Run(ctx context.Context) bool {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if m.Probe(m.ParentPID) {
				continue
			}
			m.OnGone()
			return true
		}
	}
}

// parentAlive fails as soon as this process has been reparented, even if the old
// parent pid was reused.
func parentAlive(pid int) bool {
	return unix.Getppid() == pid && processAlive(pid)
}

func killOwnGroup() {
	_ = killGroup(unix.Getpgrp())
}
