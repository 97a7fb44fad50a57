// Package syncbridge lets a caller that cannot suspend obtain the result of work
// executed on a dedicated worker context.
//
// Each call blocks on its own one-shot slot (a mutex and condition variable) while
// the worker runs the delegated function. The response travels through a per-call
// mailbox and is checked against the call id before it is returned. Protocol
// failures are fatal: they go to the bridge's fatal handler, which by default logs
// and exits the process.
package syncbridge

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTimeout bounds how long a caller waits for the worker.
const DefaultTimeout = 60 * time.Second

var osExit = os.Exit

// Func is the work delegated to the worker context.
type Func[A, R any] func(ctx context.Context, args A) (R, error)

type message[R any] struct {
	id      uint64
	result  R
	err     error
	crashed bool
}

// slot is the one-shot rendezvous of a single call.
type slot[R any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	woken    bool
	timedOut bool
	mailbox  chan message[R]
}

func newSlot[R any]() *slot[R] {
	s := &slot[R]{mailbox: make(chan message[R], 1)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *slot[R]) wake(timeout bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timeout {
		s.timedOut = true
	} else {
		s.woken = true
	}
	s.cond.Signal()
}

type request[A, R any] struct {
	ctx  context.Context //nolint:containedctx // travels with the call to the worker
	id   uint64
	args A
	slot *slot[R]
}

// Bridge runs Func on a dedicated worker and hands results back to blocked callers.
type Bridge[A, R any] struct {
	fn      Func[A, R]
	timeout time.Duration
	fatal   func(error)

	nextID   atomic.Uint64
	requests chan request[A, R]
	done     chan struct{}
	once     sync.Once

	// deliver posts msg into s and wakes its caller.
	deliver func(s *slot[R], msg message[R])
}

// Option configures a Bridge.
type Option func(*options)

type options struct {
	timeout time.Duration
	fatal   func(error)
	logger  ports.Logger
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithFatal replaces the fatal handler. If the handler returns, the failing call
// returns the protocol error to its caller.
func WithFatal(fn func(error)) Option {
	return func(o *options) { o.fatal = fn }
}

// WithLogger sets the logger used by the default fatal handler.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New starts the worker context and returns the bridge.
func New[A, R any](fn Func[A, R], opts ...Option) *Bridge[A, R] {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fatal == nil {
		logger := o.logger
		o.fatal = func(err error) {
			if logger != nil {
				logger.Error(err)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			osExit(1)
		}
	}

	b := &Bridge[A, R]{
		fn:       fn,
		timeout:  o.timeout,
		fatal:    o.fatal,
		requests: make(chan request[A, R]),
		done:     make(chan struct{}),
	}
	b.deliver = func(s *slot[R], msg message[R]) {
		select {
		case s.mailbox <- msg:
		default:
		}
		s.wake(false)
	}

	go b.work()
	return b
}

// work is the worker context. It dispatches every request to its own goroutine
// so that slow calls never hold up fast ones.
func (b *Bridge[A, R]) work() {
	for {
		select {
		case <-b.done:
			return
		case req := <-b.requests:
			go b.handle(req)
		}
	}
}

func (b *Bridge[A, R]) handle(req request[A, R]) {
	msg := message[R]{id: req.id}
	defer func() {
		if r := recover(); r != nil {
			msg.crashed = true
			msg.err = zerr.With(domain.ErrBridgeWorkerCrashed, "panic", fmt.Sprint(r))
		}
		b.deliver(req.slot, msg)
	}()

	msg.result, msg.err = b.fn(req.ctx, req.args)
}

// Call runs the delegated function with args on the worker and blocks until it
// answers or the timeout elapses.
func (b *Bridge[A, R]) Call(ctx context.Context, args A) (R, error) {
	var zero R

	id := b.nextID.Add(1)
	s := newSlot[R]()

	select {
	case <-b.done:
		return zero, b.fail(domain.ErrBridgeClosed, id)
	default:
	}
	select {
	case <-b.done:
		return zero, b.fail(domain.ErrBridgeClosed, id)
	case b.requests <- request[A, R]{ctx: ctx, id: id, args: args, slot: s}:
	}

	timer := time.AfterFunc(b.timeout, func() { s.wake(true) })
	s.mu.Lock()
	for !s.woken && !s.timedOut {
		s.cond.Wait()
	}
	woken := s.woken
	s.mu.Unlock()
	timer.Stop()

	if !woken {
		return zero, b.fail(zerr.With(domain.ErrBridgeTimeout, "timeout", b.timeout.String()), id)
	}

	var msg message[R]
	select {
	case msg = <-s.mailbox:
	default:
		return zero, b.fail(domain.ErrBridgeNoResponse, id)
	}

	if msg.id != id {
		return zero, b.fail(zerr.With(domain.ErrBridgeIDMismatch, "got_id", msg.id), id)
	}
	if msg.crashed {
		return zero, b.fail(msg.err, id)
	}
	return msg.result, msg.err
}

func (b *Bridge[A, R]) fail(err error, id uint64) error {
	err = zerr.With(err, "call_id", id)
	b.fatal(err)
	return err
}

// Close stops the worker. Later calls fail as fatal protocol errors.
func (b *Bridge[A, R]) Close() {
	b.once.Do(func() { close(b.done) })
}
