package psdrun

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/internal/runtime"
	"github.com/aretw0/psdrun/pkg/adapters/memory"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/aretw0/psdrun/pkg/render"
	"github.com/aretw0/psdrun/pkg/runner"
	"github.com/google/uuid"
)

// Session is one running prototype: a loaded document, its interaction
// runtime and the render pipeline in front of its bridge. All methods are
// safe for concurrent use; engine work runs on the session's event loop.
type Session struct {
	id       string
	doc      *domain.Document
	tree     *layertree.Tree
	bridge   ports.RenderBridge
	engine   *runtime.Engine
	pipeline *render.Pipeline
	loop     *runner.Loop
	logger   *slog.Logger
	hooks    domain.LifecycleHooks

	scheduler   ports.Scheduler
	asyncRender bool

	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    chan struct{}

	watchMu  sync.Mutex
	watchers map[chan *domain.Snapshot]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithSessionID sets the session id. Defaults to a random UUID.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithBridge sets the compositor. Defaults to a headless memory.Bridge.
func WithBridge(b ports.RenderBridge) Option {
	return func(s *Session) {
		s.bridge = b
	}
}

// WithScheduler replaces the wall clock used by screen timers and clocks.
func WithScheduler(sch ports.Scheduler) Option {
	return func(s *Session) {
		s.scheduler = sch
	}
}

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks for the runtime and
// the render pipeline.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithAsyncRender moves bridge work off the event loop. Actions return before
// their frame is composited and bursts of actions are coalesced; use Flush to
// wait for the newest frame.
func WithAsyncRender() Option {
	return func(s *Session) {
		s.asyncRender = true
	}
}

// New loads doc and starts a session without an interaction config.
// Visibility overrides work immediately; actions need SetConfig first.
func New(doc *domain.Document, opts ...Option) (*Session, error) {
	tree, err := layertree.FromDocument(doc)
	if err != nil {
		return nil, err
	}

	s := &Session{
		doc:      doc,
		tree:     tree,
		logger:   logging.NewNop(),
		closed:   make(chan struct{}),
		watchers: map[chan *domain.Snapshot]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.bridge == nil {
		s.bridge = memory.NewBridge(doc)
	}
	s.logger = s.logger.With("session", s.id)

	pipeOpts := []render.Option{
		render.WithLogger(s.logger),
		render.WithLifecycleHooks(s.hooks),
		render.WithSessionID(s.id),
	}
	if s.asyncRender {
		pipeOpts = append(pipeOpts, render.WithWorker())
	}
	s.pipeline = render.NewPipeline(s.bridge, pipeOpts...)
	s.loop = runner.NewLoop(runner.WithLogger(s.logger))

	engOpts := []runtime.Option{
		runtime.WithRenderSink(sessionSink{s}),
		runtime.WithPoster(s.loop.Post),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
		runtime.WithSessionID(s.id),
	}
	if s.scheduler != nil {
		engOpts = append(engOpts, runtime.WithScheduler(s.scheduler))
	}
	s.engine = runtime.NewEngine(tree, engOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("event loop stopped", "err", err)
		}
	}()
	if s.asyncRender {
		go s.pipeline.Run(ctx)
	}

	s.logger.Info("session started", "layers", tree.Len(), "width", tree.Width(), "height", tree.Height())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Document returns the loaded document.
func (s *Session) Document() *domain.Document { return s.doc }

// Tree returns the layer tree.
func (s *Session) Tree() *layertree.Tree { return s.tree }

// Bridge returns the compositor the session renders into.
func (s *Session) Bridge() ports.RenderBridge { return s.bridge }

// do runs fn on the event loop.
func (s *Session) do(ctx context.Context, fn func()) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}
	err := s.loop.Do(ctx, fn)
	if errors.Is(err, runner.ErrLoopClosed) {
		return ErrSessionClosed
	}
	return err
}

// SetConfig installs an interaction config. A rejected config leaves the
// previous one running.
func (s *Session) SetConfig(ctx context.Context, cfg *domain.InteractionConfig) error {
	var err error
	if doErr := s.do(ctx, func() { err = s.engine.SetConfig(ctx, cfg) }); doErr != nil {
		return doErr
	}
	return err
}

// SetConfigText parses a model reply, which may wrap the config in a fenced
// code block, and installs it.
func (s *Session) SetConfigText(ctx context.Context, text string) error {
	cfg, err := interaction.Parse(text)
	if err != nil {
		s.logger.Warn("config rejected", "err", err)
		return err
	}
	return s.SetConfig(ctx, cfg)
}

// Config returns the active config, or nil.
func (s *Session) Config(ctx context.Context) (*domain.InteractionConfig, error) {
	var cfg *domain.InteractionConfig
	err := s.do(ctx, func() { cfg = s.engine.Config() })
	return cfg, err
}

// Dispatch runs one action and reports whether it changed anything.
func (s *Session) Dispatch(ctx context.Context, a domain.Action) (bool, error) {
	var (
		applied bool
		err     error
	)
	if doErr := s.do(ctx, func() { applied, err = s.engine.Dispatch(ctx, a) }); doErr != nil {
		return false, doErr
	}
	return applied, err
}

// Click activates the element bound to layerID when it is live on the
// current screen.
func (s *Session) Click(ctx context.Context, layerID int) (bool, error) {
	var (
		applied bool
		err     error
	)
	if doErr := s.do(ctx, func() { applied, err = s.engine.Click(ctx, layerID) }); doErr != nil {
		return false, doErr
	}
	return applied, err
}

// ClickAt hit-tests a document point and clicks the topmost live element
// under it. It returns the layer that was hit.
func (s *Session) ClickAt(ctx context.Context, x, y int) (int, bool, error) {
	var (
		layerID int
		applied bool
		err     error
	)
	doErr := s.do(ctx, func() {
		id, ok := s.engine.HitTest(x, y)
		if !ok {
			return
		}
		layerID = id
		applied, err = s.engine.Click(ctx, id)
	})
	if doErr != nil {
		return 0, false, doErr
	}
	return layerID, applied, err
}

// SetOverride toggles one layer, as a layer panel does.
func (s *Session) SetOverride(ctx context.Context, layerID int, visible bool) (bool, error) {
	var applied bool
	err := s.do(ctx, func() { applied = s.engine.SetOverride(ctx, layerID, visible) })
	return applied, err
}

// Snapshot copies the runtime state.
func (s *Session) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.do(ctx, func() { snap = s.engine.Snapshot() })
	return snap, err
}

// Restore reinstates a snapshot on top of the active config.
func (s *Session) Restore(ctx context.Context, snap *domain.Snapshot) error {
	var err error
	if doErr := s.do(ctx, func() { err = s.engine.Restore(ctx, snap) }); doErr != nil {
		return doErr
	}
	return err
}

// Clear stops every timer and drops the config and all overrides.
func (s *Session) Clear(ctx context.Context) error {
	return s.do(ctx, func() { s.engine.Clear(ctx) })
}

// Visible reports the effective visibility of every layer under the current
// overrides.
func (s *Session) Visible(ctx context.Context) (map[int]bool, error) {
	var out map[int]bool
	err := s.do(ctx, func() {
		out = s.engine.VisibleSet()
	})
	return out, err
}

// Export returns the nested layer tree annotated with hints.
func (s *Session) Export(hints *domain.HintSet) *layertree.Export {
	return s.tree.Export(hints)
}

// Frame returns the newest composited frame.
func (s *Session) Frame() (domain.Frame, bool) { return s.pipeline.Frame() }

// Flush waits until every render request issued so far has been composited.
func (s *Session) Flush(ctx context.Context) error { return s.pipeline.Flush(ctx) }

// Close stops the session's timers, its event loop and its render worker.
// Watch channels are closed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		_ = s.loop.Do(context.Background(), func() { s.engine.Clear(context.Background()) })
		close(s.closed)
		s.loop.Close()
		s.cancel()

		s.watchMu.Lock()
		for ch := range s.watchers {
			close(ch)
		}
		s.watchers = nil
		s.watchMu.Unlock()

		s.logger.Info("session closed")
	})
	return nil
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} { return s.closed }
