// Package loader is the child-side half of the compile protocol. It decides, for
// each module the runtime is about to load, whether to load it as-is or to
// substitute the compiled artifact the leader produced.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.trai.ch/respawn/internal/adapters/ipc"
	"go.trai.ch/respawn/internal/adapters/supervisor"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/respawn/internal/engine/syncbridge"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// Resolution is what the runtime's load hook should do with a module.
type Resolution struct {
	// Default means the module is loaded as-is.
	Default bool
	// Path is the compiled artifact backing Content.
	Path    string
	Content []byte
}

// Loader resolves modules through the leader. Whole destination maps are
// cached, so colocated files cost a single round trip.
type Loader struct {
	env      domain.ChildEnv
	logger   ports.Logger
	bridge   *syncbridge.Bridge[string, domain.DestinationMap]
	notifier *ipc.Notifier

	mu    sync.RWMutex
	cache domain.DestinationMap

	stopMonitor context.CancelFunc
}

// Option configures a Loader.
type Option func(*config)

type config struct {
	notifyWindow time.Duration
	bridgeOpts   []syncbridge.Option
}

// WithNotifyWindow sets how long file-required reports are coalesced.
func WithNotifyWindow(d time.Duration) Option {
	return func(c *config) { c.notifyWindow = d }
}

// WithBridgeOptions configures the bridge carrying compile calls.
func WithBridgeOptions(opts ...syncbridge.Option) Option {
	return func(c *config) { c.bridgeOpts = append(c.bridgeOpts, opts...) }
}

// New creates a loader talking to the leader through client.
func New(env domain.ChildEnv, client ports.LeaderClient, logger ports.Logger, opts ...Option) *Loader {
	cfg := config{
		notifyWindow: ipc.DefaultNotifyWindow,
		bridgeOpts:   []syncbridge.Option{syncbridge.WithLogger(logger)},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Loader{
		env:      env,
		logger:   logger,
		bridge:   syncbridge.New[string, domain.DestinationMap](client.Compile, cfg.bridgeOpts...),
		notifier: ipc.NewNotifier(client, logger, cfg.notifyWindow),
		cache:    make(domain.DestinationMap),
	}
}

// FromEnv builds a loader from the environment the leader gave this process. It
// fails with domain.ErrNotSupervised outside respawn. When this process is the
// leader's direct child it also exits with the leader.
func FromEnv(logger ports.Logger, opts ...Option) (*Loader, error) {
	env, ok := domain.ChildEnvFromOS()
	if !ok {
		return nil, domain.ErrNotSupervised
	}

	client, err := ipc.Dial(env.SocketPath)
	if err != nil {
		return nil, err
	}

	l := New(env, client, logger, opts...)
	if env.ParentPID > 0 && unix.Getppid() == env.ParentPID {
		ctx, cancel := context.WithCancel(context.Background())
		l.stopMonitor = cancel
		go supervisor.NewParentMonitor(env.ParentPID).Run(ctx)
	}
	return l, nil
}

// Intercepts reports whether path has an extension the leader compiles.
func (l *Loader) Intercepts(path string) bool {
	return slices.Contains(l.env.Extensions, filepath.Ext(path))
}

// Resolve decides how the module at path is loaded. Files without an intercepted
// extension and files the project ignores load as-is. Anything else is compiled
// by the leader and its artifact content returned.
func (l *Loader) Resolve(ctx context.Context, path string) (Resolution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Resolution{}, zerr.With(zerr.Wrap(err, "invalid module path"), "path", path)
	}
	if !l.Intercepts(abs) {
		return Resolution{Default: true}, nil
	}

	dest, err := l.destination(ctx, abs)
	if err != nil {
		return Resolution{}, err
	}
	if dest.Ignored {
		return Resolution{Default: true}, nil
	}

	content, err := os.ReadFile(dest.Path)
	if err != nil {
		return Resolution{}, zerr.With(zerr.Wrap(err, "failed to read compiled artifact"), "artifact", dest.Path)
	}
	l.notifier.Add(abs)
	return Resolution{Path: dest.Path, Content: content}, nil
}

func (l *Loader) destination(ctx context.Context, file string) (domain.Destination, error) {
	l.mu.RLock()
	dest, ok := l.cache[file]
	l.mu.RUnlock()
	if ok {
		return dest, nil
	}

	files, err := l.bridge.Call(ctx, file)
	if err != nil {
		return domain.Destination{}, err
	}

	l.mu.Lock()
	for src, d := range files {
		l.cache[src] = d
	}
	l.mu.Unlock()

	dest, ok = files[file]
	if !ok {
		return domain.Destination{}, zerr.With(domain.ErrUnbuilt, "file", file)
	}
	return dest, nil
}

// Close flushes pending reports and releases the bridge.
func (l *Loader) Close() {
	l.notifier.Flush()
	l.bridge.Close()
	if l.stopMonitor != nil {
		l.stopMonitor()
	}
}
