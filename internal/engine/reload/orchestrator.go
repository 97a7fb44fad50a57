// Package reload batches change events into sequential reload cycles.
package reload

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
)

// Orchestrator implements ports.Reloader. Events collected within one debounce
// window produce exactly one cycle: optional build-set invalidation, a rebuild of
// dirty files, and a restart of the supervised child.
type Orchestrator struct {
	engine     ports.CompileEngine
	supervisor ports.Supervisor
	tracer     ports.Tracer
	logger     ports.Logger
	debounce   time.Duration
	onReload   func(domain.ReloadBatch)

	mu    sync.Mutex
	batch domain.ReloadBatch
	timer *time.Timer
	base  context.Context //nolint:containedctx // timer-fired cycles run under the Start context

	// cycle is a one-slot semaphore serializing reload cycles.
	cycle chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDebounce overrides domain.DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// OnReload registers fn to observe every batch at the start of its cycle.
func OnReload(fn func(domain.ReloadBatch)) Option {
	return func(o *Orchestrator) { o.onReload = fn }
}

// New creates an Orchestrator.
func New(
	engine ports.CompileEngine,
	supervisor ports.Supervisor,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		supervisor: supervisor,
		tracer:     tracer,
		logger:     logger,
		debounce:   domain.DefaultDebounce,
		base:       context.Background(),
		cycle:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start spawns the first child and binds timer-fired cycles to ctx.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.base = ctx
	o.mu.Unlock()

	o.cycle <- struct{}{}
	defer func() { <-o.cycle }()
	return o.supervisor.Restart(ctx)
}

// EnqueueReload adds path to the pending batch, ORs in the invalidation flag and
// restarts the debounce window.
func (o *Orchestrator) EnqueueReload(path string, requiresInvalidation bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.batch.Add(path, requiresInvalidation)
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.debounce, o.fire)
}

func (o *Orchestrator) fire() {
	o.mu.Lock()
	o.timer = nil
	empty := o.batch.Empty()
	ctx := o.base
	o.mu.Unlock()

	if empty || ctx.Err() != nil {
		return
	}
	if err := o.reload(ctx, true); err != nil {
		o.logger.Error(err)
	}
}

// ReloadNow runs one cycle with whatever is pending. Cycles never overlap; the
// batch is taken and cleared as the cycle begins.
func (o *Orchestrator) ReloadNow(ctx context.Context) error {
	return o.reload(ctx, false)
}

// reload runs one cycle. With skipEmpty the cycle is dropped when an earlier
// cycle already took the batch while this one waited for its turn.
func (o *Orchestrator) reload(ctx context.Context, skipEmpty bool) error {
	o.cycle <- struct{}{}
	defer func() { <-o.cycle }()

	o.mu.Lock()
	if skipEmpty && (o.batch.Empty() || ctx.Err() != nil) {
		o.mu.Unlock()
		return nil
	}
	batch := o.batch
	o.batch = domain.ReloadBatch{}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	ctx, span := o.tracer.Start(ctx, "reload")
	defer span.End()
	span.SetAttribute("reload.paths", len(batch.Paths))
	span.SetAttribute("reload.invalidate", batch.Invalidate)

	if o.onReload != nil {
		o.onReload(batch)
	}

	if batch.Invalidate {
		o.engine.InvalidateBuildSet()
	}
	if err := o.engine.Rebuild(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	if err := o.supervisor.Restart(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Reset forces an invalidating cycle immediately.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.mu.Lock()
	o.batch.Add("", true)
	o.mu.Unlock()
	return o.ReloadNow(ctx)
}

// Close cancels a pending debounce timer.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
