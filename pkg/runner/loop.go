package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/psdrun/internal/logging"
)

// ErrLoopClosed is returned when work is handed to a loop that has stopped.
var ErrLoopClosed = errors.New("event loop closed")

// Loop serialises the events of one session onto a single goroutine.
// Post never blocks, so scheduler callbacks may post while the loop is busy.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []func()
	closed  bool
	running bool

	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		logger:  logging.NewNop(),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn. After Close it silently drops fn.
func (l *Loop) Post(fn func()) {
	l.enqueue(fn)
}

func (l *Loop) enqueue(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.enqueue(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		// The task may have run just before the loop stopped.
		select {
		case <-done:
			return nil
		default:
			return ErrLoopClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled or Close is called. Tasks still
// queued when the loop stops are discarded.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("event loop already running")
	}
	l.running = true
	l.mu.Unlock()

	defer l.stop()

	for {
		l.mu.Lock()
		batch := l.tasks
		l.tasks = nil
		closed := l.closed
		l.mu.Unlock()

		if closed {
			return nil
		}
		for _, fn := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if l.isClosed() {
				return nil
			}
			l.run(fn)
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop task panicked", "panic", r)
		}
	}()
	fn()
}

// Close stops the loop. Pending and future tasks are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.tasks = nil
	running := l.running
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	if !running {
		l.stop()
	}
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.stopped }

func (l *Loop) stop() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.tasks = nil
		l.mu.Unlock()
		close(l.stopped)
	})
}
