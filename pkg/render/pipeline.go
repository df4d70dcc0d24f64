// Package render drives a ports.RenderBridge from the stream of render
// requests an engine produces.
//
// Every request carries a sequence number. A request older than one already
// accepted is dropped, text pushes never overwrite a newer text for the same
// layer, and each recomposite applies the newest override snapshot seen so
// far. A frame produced from an older snapshot than the current frame is
// discarded, so a slow completion can never replace a newer image.
package render

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/ports"
)

// Pipeline is safe for concurrent use.
type Pipeline struct {
	bridge    ports.RenderBridge
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	sessionID string
	worker    bool

	mu       sync.Mutex
	issued   uint64
	done     uint64
	latest   map[int]bool
	frame    domain.Frame
	progress chan struct{}
	pending  map[int]pendingText
	wake     chan struct{}

	textMu  sync.Mutex
	textSeq map[int]uint64
}

type pendingText struct {
	text string
	seq  uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithLifecycleHooks registers the OnFrame and OnRenderError callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithSessionID tags render events.
func WithSessionID(id string) Option {
	return func(p *Pipeline) {
		p.sessionID = id
	}
}

// WithWorker makes Submit return immediately. Requests queue up and are
// coalesced by the goroutine running Run: pending texts collapse to the
// newest per layer and a burst of requests costs one recomposite.
func WithWorker() Option {
	return func(p *Pipeline) {
		p.worker = true
	}
}

// NewPipeline creates a pipeline in front of bridge. Without WithWorker,
// Submit does the bridge work in the calling goroutine.
func NewPipeline(bridge ports.RenderBridge, opts ...Option) *Pipeline {
	p := &Pipeline{
		bridge:   bridge,
		logger:   logging.NewNop(),
		progress: make(chan struct{}),
		pending:  make(map[int]pendingText),
		wake:     make(chan struct{}, 1),
		textSeq:  make(map[int]uint64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit accepts one render request. Requests whose sequence number is not
// newer than the last accepted one are dropped.
func (p *Pipeline) Submit(ctx context.Context, req domain.RenderRequest) {
	p.mu.Lock()
	if req.Seq <= p.issued {
		p.mu.Unlock()
		p.logger.Debug("out of order render request dropped", "seq", req.Seq)
		return
	}
	p.issued = req.Seq
	p.latest = req.Overrides

	if p.worker {
		for _, t := range req.Texts {
			p.pending[t.LayerID] = pendingText{text: t.Text, seq: req.Seq}
		}
		p.mu.Unlock()
		select {
		case p.wake <- struct{}{}:
		default:
		}
		return
	}
	p.mu.Unlock()

	texts := make(map[int]pendingText, len(req.Texts))
	for _, t := range req.Texts {
		texts[t.LayerID] = pendingText{text: t.Text, seq: req.Seq}
	}
	p.process(ctx, req.Seq, texts)
}

// Run drains queued requests until ctx is done. It is only needed with
// WithWorker.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}
		p.mu.Lock()
		seq := p.issued
		texts := p.pending
		p.pending = make(map[int]pendingText)
		p.mu.Unlock()

		p.process(ctx, seq, texts)
	}
}

// process pushes texts, then recomposites once with the newest overrides.
func (p *Pipeline) process(ctx context.Context, seq uint64, texts map[int]pendingText) {
	start := time.Now()
	p.pushTexts(ctx, texts)

	p.mu.Lock()
	used := p.issued
	req := domain.RenderRequest{Overrides: p.latest}
	p.mu.Unlock()

	bitmap, err := p.bridge.ApplyVisibilityBatch(ctx, req.Hidden(), req.Shown())
	if err != nil {
		p.fail(ctx, &BridgeError{Op: OpRecomposite, Seq: used, Err: err})
		p.finish(seq)
		return
	}

	p.mu.Lock()
	stale := used <= p.frame.Seq
	if !stale {
		p.frame = domain.Frame{Seq: used, At: time.Now(), Bitmap: bitmap}
	}
	p.mu.Unlock()
	p.finish(seq)

	if stale {
		p.logger.Debug("stale frame discarded", "seq", seq, "snapshot", used)
	}
	if p.hooks.OnFrame != nil {
		p.hooks.OnFrame(ctx, &domain.RenderEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFrame, SessionID: p.sessionID},
			Seq:       seq,
			Stale:     stale,
			Duration:  time.Since(start),
		})
	}
}

func (p *Pipeline) pushTexts(ctx context.Context, texts map[int]pendingText) {
	if len(texts) == 0 {
		return
	}
	p.textMu.Lock()
	defer p.textMu.Unlock()
	for id, t := range texts {
		if p.textSeq[id] > t.seq {
			continue
		}
		if err := p.bridge.SetLayerText(ctx, id, t.text); err != nil {
			p.fail(ctx, &BridgeError{Op: OpSetText, LayerID: id, Seq: t.seq, Err: err})
			continue
		}
		p.textSeq[id] = t.seq
	}
}

func (p *Pipeline) fail(ctx context.Context, err *BridgeError) {
	p.logger.Error("render bridge failed", "op", err.Op, "layer", err.LayerID, "seq", err.Seq, "err", err.Err)
	if p.hooks.OnRenderError != nil {
		p.hooks.OnRenderError(ctx, &domain.RenderEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRenderError, SessionID: p.sessionID},
			Seq:       err.Seq,
			Err:       err,
		})
	}
}

func (p *Pipeline) finish(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq > p.done {
		p.done = seq
	}
	close(p.progress)
	p.progress = make(chan struct{})
}

// Flush blocks until every accepted request has been rendered or ctx ends.
func (p *Pipeline) Flush(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.done >= p.issued {
			p.mu.Unlock()
			return nil
		}
		ch := p.progress
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Frame returns the newest composited frame, or false before the first one.
func (p *Pipeline) Frame() (domain.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame, p.frame.Seq > 0
}

// Issued returns the highest accepted sequence number.
func (p *Pipeline) Issued() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issued
}
