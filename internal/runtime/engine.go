// Package runtime implements the interaction runtime: the state machine that
// turns an interaction config and a layer tree into screen navigation,
// popups, highlight groups, digit entry, clocks and screen timers.
//
// An Engine is not safe for concurrent use. All calls, including the timer
// callbacks it schedules, must be serialised by the caller; the session event
// loop does this by installing a poster with WithPoster.
package runtime

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/aretw0/psdrun/pkg/visibility"
)

// RenderSink receives the render request produced by each applied action.
type RenderSink interface {
	Submit(ctx context.Context, req domain.RenderRequest)
}

// Engine holds the runtime state of one prototype session.
type Engine struct {
	tree     *layertree.Tree
	resolver *visibility.Resolver

	sink      RenderSink
	scheduler ports.Scheduler
	post      func(func())
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	sessionID string

	cfg       *domain.InteractionConfig
	overrides visibility.Overrides

	currentScreen string
	elementScreen map[int]string // layer id -> enclosing screen name
	screenGroups  map[int]string // screen element layer id -> screen name
	sliders       map[int]float64
	texts         map[int]string
	popups        map[string]struct{}
	highlights    map[string]string // group -> selected highlight name
	clocks        map[int]ports.Timer
	screenTimers  map[uint64]ports.Timer

	timerSeq  uint64
	clockGen  uint64
	renderSeq uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRenderSink sets where render requests go. Defaults to discarding them.
func WithRenderSink(sink RenderSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithScheduler sets the clock used for screen timers and clock ticks.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithPoster sets how scheduled callbacks re-enter the engine. The default
// runs them on the scheduler goroutine.
func WithPoster(post func(func())) Option {
	return func(e *Engine) {
		e.post = post
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionID tags events and snapshots.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// NewEngine binds an engine to a loaded layer tree. The engine starts with no
// config; actions fail with domain.ErrNoConfig until SetConfig succeeds.
func NewEngine(tree *layertree.Tree, opts ...Option) *Engine {
	e := &Engine{
		tree:      tree,
		resolver:  visibility.NewResolver(tree),
		sink:      nopSink{},
		scheduler: systemScheduler{},
		post:      func(fn func()) { fn() },
		logger:    logging.NewNop(),
		overrides: visibility.Overrides{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("session", e.sessionID)
	e.reset()
	return e
}

// Tree returns the layer tree the engine runs against.
func (e *Engine) Tree() *layertree.Tree { return e.tree }

// Config returns the active config, or nil.
func (e *Engine) Config() *domain.InteractionConfig { return e.cfg }

// CurrentScreen returns the active screen name, empty without a config.
func (e *Engine) CurrentScreen() string { return e.currentScreen }

// Overrides returns a copy of the session override map.
func (e *Engine) Overrides() visibility.Overrides { return e.overrides.Clone() }

// SetOverride sets a manual visibility override, as a layer panel toggle
// does, and renders it. It works with or without a config.
func (e *Engine) SetOverride(ctx context.Context, layerID int, visible bool) bool {
	if _, ok := e.tree.Layer(layerID); !ok {
		e.logger.Debug("override for unknown layer ignored", "layer", layerID)
		return false
	}
	e.commit(ctx, "override", map[int]bool{layerID: visible}, nil)
	return true
}

// SetConfig validates cfg, tears down the previous runtime state and starts
// the prototype on its initial screen. An invalid config is rejected with a
// *interaction.ConfigError and the previous config stays active.
func (e *Engine) SetConfig(ctx context.Context, cfg *domain.InteractionConfig) error {
	if err := interaction.Validate(cfg); err != nil {
		e.logger.Warn("config rejected", "err", err)
		return err
	}
	e.stopTimers()
	e.reset()
	e.cfg = cfg

	for _, el := range cfg.Elements {
		if el.Type == domain.ElementScreen {
			e.screenGroups[el.LayerID] = el.Name
		}
	}
	isScreen := func(id int) bool { _, ok := e.screenGroups[id]; return ok }
	for _, el := range cfg.Elements {
		if el.Type == domain.ElementScreen || el.Type == domain.ElementTimer {
			continue
		}
		if g, ok := e.resolver.EnclosingGroup(el.LayerID, isScreen); ok {
			e.elementScreen[el.LayerID] = e.screenGroups[g]
		}
	}

	var texts []domain.TextUpdate
	for _, el := range cfg.Elements {
		if el.Type.IsTextHolder() && el.Value != "" {
			e.texts[el.LayerID] = el.Value
			texts = append(texts, domain.TextUpdate{LayerID: el.LayerID, Text: el.Value})
		}
		if el.Type == domain.ElementSlider && el.Min != nil {
			e.sliders[el.LayerID] = *el.Min
		}
	}

	batch := e.enterScreen(ctx, cfg.InitialScreen)
	texts = append(texts, e.startClocks()...)
	e.commit(ctx, "config", batch, texts)

	e.logger.Info("config loaded", "screens", len(cfg.Screens), "elements", len(cfg.Elements), "initial", cfg.InitialScreen)
	e.emitConfig(ctx, cfg)
	return nil
}

// Clear cancels every timer and clock and resets all runtime state, including
// the override map, returning the document to its authored visibility.
func (e *Engine) Clear(ctx context.Context) {
	e.stopTimers()
	hadState := e.cfg != nil || len(e.overrides) > 0
	e.reset()
	if hadState {
		e.commit(ctx, "clear", nil, nil)
	}
}

func (e *Engine) reset() {
	e.cfg = nil
	e.currentScreen = ""
	e.overrides = visibility.Overrides{}
	e.elementScreen = map[int]string{}
	e.screenGroups = map[int]string{}
	e.sliders = map[int]float64{}
	e.texts = map[int]string{}
	e.popups = map[string]struct{}{}
	e.highlights = map[string]string{}
	e.clocks = map[int]ports.Timer{}
	e.screenTimers = map[uint64]ports.Timer{}
}

// Snapshot copies the runtime state.
func (e *Engine) Snapshot() *domain.Snapshot {
	s := domain.NewSnapshot(e.sessionID)
	s.Configured = e.cfg != nil
	s.CurrentScreen = e.currentScreen
	s.ActivePopups = e.activePopups()
	maps.Copy(s.SelectedHighlights, e.highlights)
	maps.Copy(s.DynamicTexts, e.texts)
	maps.Copy(s.SliderValues, e.sliders)
	maps.Copy(s.Overrides, e.overrides)
	s.ClocksRunning = len(e.clocks) > 0
	s.PendingTimers = len(e.screenTimers)
	return s
}

// Restore reinstates a snapshot taken from a session running the same
// document and config. Screen timers for the restored screen are re-armed
// from zero.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if e.cfg == nil {
		return domain.ErrNoConfig
	}
	if snap.CurrentScreen != "" && !e.cfg.HasScreen(snap.CurrentScreen) {
		return &interaction.ConfigError{
			Stage:  interaction.StageValidate,
			Issues: []interaction.Issue{{Key: "current_screen", Reason: "snapshot screen is not declared by the active config"}},
		}
	}
	e.cancelScreenTimers()
	e.currentScreen = snap.CurrentScreen
	e.popups = map[string]struct{}{}
	for _, p := range snap.ActivePopups {
		e.popups[p] = struct{}{}
	}
	e.highlights = maps.Clone(snap.SelectedHighlights)
	e.sliders = maps.Clone(snap.SliderValues)
	e.texts = maps.Clone(snap.DynamicTexts)
	if e.highlights == nil {
		e.highlights = map[string]string{}
	}
	if e.sliders == nil {
		e.sliders = map[int]float64{}
	}
	if e.texts == nil {
		e.texts = map[int]string{}
	}
	e.overrides = visibility.Overrides{}

	texts := make([]domain.TextUpdate, 0, len(e.texts))
	for _, id := range slices.Sorted(maps.Keys(e.texts)) {
		texts = append(texts, domain.TextUpdate{LayerID: id, Text: e.texts[id]})
	}
	e.armScreenTimers(e.currentScreen)
	e.commit(ctx, "restore", maps.Clone(snap.Overrides), texts)
	return nil
}

// commit applies batch to the override map and submits one render request.
// Ids the document does not have are dropped so a bad reference in the config
// never reaches the renderer.
func (e *Engine) commit(ctx context.Context, reason string, batch map[int]bool, texts []domain.TextUpdate) {
	for id := range batch {
		if _, ok := e.tree.Layer(id); !ok {
			e.logger.Debug("unknown layer dropped from batch", "layer", id, "reason", reason)
			delete(batch, id)
		}
	}
	texts = slices.DeleteFunc(texts, func(u domain.TextUpdate) bool {
		if _, ok := e.tree.Layer(u.LayerID); ok {
			return false
		}
		e.logger.Debug("text for unknown layer dropped", "layer", u.LayerID, "reason", reason)
		return true
	})
	e.overrides.Apply(batch)
	e.renderSeq++
	req := domain.RenderRequest{
		Seq:       e.renderSeq,
		Reason:    reason,
		Batch:     batch,
		Overrides: e.overrides.Clone(),
		Texts:     texts,
	}
	e.logger.Debug("render requested", "seq", req.Seq, "reason", reason, "batch", len(batch), "texts", len(texts))
	e.sink.Submit(ctx, req)
}

func (e *Engine) activePopups() []string {
	return slices.Sorted(maps.Keys(e.popups))
}

type nopSink struct{}

func (nopSink) Submit(context.Context, domain.RenderRequest) {}
