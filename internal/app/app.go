// Package app implements the application layer for respawn.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"go.trai.ch/respawn/internal/adapters/ipc"
	"go.trai.ch/respawn/internal/adapters/loader"
	"go.trai.ch/respawn/internal/adapters/supervisor"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/respawn/internal/engine/compiler"
	"go.trai.ch/respawn/internal/engine/reload"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	transformer  ports.Transformer
	watcher      ports.Watcher
	tracer       ports.Tracer
	logger       ports.Logger

	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
	getwd  func() (string, error)
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	transformer ports.Transformer,
	watcher ports.Watcher,
	tracer ports.Tracer,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: configLoader,
		transformer:  transformer,
		watcher:      watcher,
		tracer:       tracer,
		logger:       logger,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		getwd:        os.Getwd,
	}
}

// WithIO replaces the standard streams shared with the child.
func (a *App) WithIO(stdin *os.File, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkDir pins the directory the project is discovered from.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Command    []string
	PTY        bool
	NoCommands bool
	ESM        bool
}

// Run supervises opts.Command until ctx ends, reloading it whenever a file it
// loaded changes. The child is stopped gracefully on the way out.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Command) == 0 {
		return domain.ErrNoCommand
	}

	cwd, err := a.getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to resolve working directory")
	}
	project, err := a.configLoader.Discover(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	session, err := NewSession()
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Error(zerr.Wrap(err, "cleanup failed"))
		}
	}()

	engine := compiler.New(project, a.configLoader, a.transformer, a.logger)
	watch := domain.NewWatchSet()

	server := ipc.NewServer(engine, watch, a.logger)
	if err := server.Listen(session.SocketPath); err != nil {
		return err
	}
	session.OnCleanup(server.Close)

	upstream, err := inheritedChannel()
	if err != nil {
		return err
	}
	if upstream != nil {
		session.OnCleanup(upstream.Close)
	}

	cfg := supervisor.Config{
		Command: opts.Command,
		Dir:     cwd,
		Env: domain.ChildEnv{
			SocketPath: session.SocketPath,
			Extensions: project.Extensions,
			ESM:        opts.ESM || project.ESM,
		},
		PTY:         opts.PTY,
		Stdout:      a.stdout,
		Stderr:      a.stderr,
		StopTimeout: project.Reload.StopTimeout,
		Upstream:    upstream,
	}
	if opts.NoCommands {
		cfg.Stdin = a.stdin
	}
	sup, err := supervisor.New(cfg, a.logger)
	if err != nil {
		return err
	}

	orch := reload.New(engine, sup, a.tracer, a.logger,
		reload.WithDebounce(project.Reload.Debounce),
		reload.OnReload(func(domain.ReloadBatch) {
			a.logger.Info("restarting due to changes...")
		}),
	)
	session.OnCleanup(func() error {
		orch.Close()
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(gctx) })

	if err := a.watcher.Start(gctx, project.Root); err != nil {
		return zerr.Wrap(err, "failed to start file watcher")
	}
	session.OnCleanup(a.watcher.Stop)

	r := &router{workspace: project, engine: engine, reloader: orch, watch: watch}
	g.Go(func() error {
		for ev := range a.watcher.Events() {
			r.route(ev)
		}
		return nil
	})

	if !opts.NoCommands && a.stdin != nil {
		go readCommands(gctx, a.stdin, orch, a.logger)
	}

	if err := orch.Start(gctx); err != nil {
		a.logger.Error(err)
	}

	<-gctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), project.Reload.StopTimeout+time.Second)
	defer cancel()
	stopErr := sup.Stop(stopCtx, syscall.SIGTERM)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Join(err, stopErr)
	}
	return stopErr
}

// inheritedChannel opens the relay channel of an enclosing supervisor, if any.
func inheritedChannel() (net.Conn, error) {
	raw, ok := os.LookupEnv(domain.EnvChannelFD)
	if !ok || raw == "" {
		return nil, nil
	}
	fd, err := strconv.Atoi(raw)
	if err != nil || fd <= 2 {
		return nil, nil
	}
	return supervisor.OpenChannel(fd)
}

// CompileOptions configuration for the Compile method.
type CompileOptions struct {
	// Content prints the compiled source instead of its path.
	Content bool
}

// Compile resolves file through the supervising leader and prints where its
// compiled artifact lives. Files loaded as-is print nothing.
func (a *App) Compile(ctx context.Context, file string, opts CompileOptions) error {
	l, err := loader.FromEnv(a.logger)
	if err != nil {
		return err
	}
	defer l.Close()

	res, err := l.Resolve(ctx, file)
	if err != nil {
		return err
	}
	if res.Default {
		return nil
	}

	if opts.Content {
		_, err = a.stdout.Write(res.Content)
	} else {
		_, err = fmt.Fprintln(a.stdout, res.Path)
	}
	return err
}
