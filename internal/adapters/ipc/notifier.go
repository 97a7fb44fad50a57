package ipc

import (
	"context"
	"sync"
	"time"
	"unique"

	"go.trai.ch/respawn/internal/core/ports"
)

const (
	// DefaultNotifyWindow coalesces file-required reports into one request.
	DefaultNotifyWindow = 100 * time.Millisecond

	notifyTimeout = 5 * time.Second
)

// Notifier batches file-required reports to the leader. Delivery is best-effort:
// failures are logged and the batch is dropped.
type Notifier struct {
	client ports.LeaderClient
	logger ports.Logger
	window time.Duration

	mu      sync.Mutex
	pending []string
	seen    map[unique.Handle[string]]struct{}
	timer   *time.Timer
}

// NewNotifier creates a notifier sending through client.
func NewNotifier(client ports.LeaderClient, logger ports.Logger, window time.Duration) *Notifier {
	return &Notifier{
		client: client,
		logger: logger,
		window: window,
		seen:   make(map[unique.Handle[string]]struct{}),
	}
}

// Add queues paths for the next batch and restarts the window.
func (n *Notifier) Add(paths ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, p := range paths {
		handle := unique.Make(p)
		if _, ok := n.seen[handle]; ok {
			continue
		}
		n.seen[handle] = struct{}{}
		n.pending = append(n.pending, p)
	}
	if len(n.pending) == 0 {
		return
	}

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.window, n.fire)
}

func (n *Notifier) take() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	paths := n.pending
	n.pending = nil
	n.seen = make(map[unique.Handle[string]]struct{})
	n.timer = nil
	return paths
}

func (n *Notifier) fire() {
	n.send(n.take())
}

// Flush sends the pending batch now and waits for the request to finish.
func (n *Notifier) Flush() {
	n.mu.Lock()
	if n.timer != nil && !n.timer.Stop() {
		// Already firing.
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	n.send(n.take())
}

func (n *Notifier) send(paths []string) {
	if len(paths) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := n.client.FileRequired(ctx, paths); err != nil {
		n.logger.Warn("failed to report loaded files to the leader: " + err.Error())
	}
}
