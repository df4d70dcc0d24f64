package psdrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/session"
)

// Hub keeps the live sessions of a server process and, when a session
// manager is configured, persists their snapshots.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	manager     *session.Manager
	sessionOpts []Option
	logger      *slog.Logger
	onOpen      func(*Session)
	onClose     func(*Session)
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithManager enables Persist and Resume.
func WithManager(m *session.Manager) HubOption {
	return func(h *Hub) {
		h.manager = m
	}
}

// WithSessionOptions are applied to every session the hub opens.
func WithSessionOptions(opts ...Option) HubOption {
	return func(h *Hub) {
		h.sessionOpts = append(h.sessionOpts, opts...)
	}
}

// WithHubLogger sets a structured logger. Defaults to discarding logs.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithSessionHooks registers callbacks run after a session opens and after
// it closes.
func WithSessionHooks(onOpen, onClose func(*Session)) HubOption {
	return func(h *Hub) {
		h.onOpen = onOpen
		h.onClose = onClose
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		sessions: map[string]*Session{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open starts a session for doc. An empty id picks a random one; an id
// already in use is rejected.
func (h *Hub) Open(doc *domain.Document, id string, opts ...Option) (*Session, error) {
	all := slices.Concat(h.sessionOpts, opts)
	if id != "" {
		all = append(all, WithSessionID(id))
	}

	h.mu.Lock()
	if _, exists := h.sessions[id]; id != "" && exists {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	h.mu.Unlock()

	s, err := New(doc, all...)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if _, exists := h.sessions[s.ID()]; exists {
		h.mu.Unlock()
		s.Close()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, s.ID())
	}
	h.sessions[s.ID()] = s
	h.mu.Unlock()

	if h.onOpen != nil {
		h.onOpen(s)
	}
	h.logger.Info("session opened", "session", s.ID())
	return s, nil
}

// Get returns a live session or domain.ErrSessionNotFound.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// List returns the ids of the live sessions in ascending order.
func (h *Hub) List() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Persist saves the session snapshot through the manager.
func (h *Hub) Persist(ctx context.Context, id string) error {
	if h.manager == nil {
		return nil
	}
	s, err := h.Get(id)
	if err != nil {
		return err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := h.manager.Save(ctx, id, snap); err != nil {
		return fmt.Errorf("failed to persist session %s: %w", id, err)
	}
	return nil
}

// Resume opens a session for doc under id, installs cfg and restores the
// snapshot stored for id. Without a stored snapshot the session simply
// starts on the config's initial screen.
func (h *Hub) Resume(ctx context.Context, doc *domain.Document, id string, cfg *domain.InteractionConfig) (*Session, error) {
	if h.manager == nil {
		return nil, errors.New("resume requires a session manager")
	}
	snap, err := h.manager.Load(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	s, err := h.Open(doc, id)
	if err != nil {
		return nil, err
	}
	if err := s.SetConfig(ctx, cfg); err != nil {
		h.Close(ctx, id)
		return nil, err
	}
	if snap != nil && snap.Configured {
		if err := s.Restore(ctx, snap); err != nil {
			h.Close(ctx, id)
			return nil, err
		}
		h.logger.Info("session resumed", "session", id, "screen", snap.CurrentScreen)
	}
	return s, nil
}

// Close persists and stops one session.
func (h *Hub) Close(ctx context.Context, id string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	var persistErr error
	if h.manager != nil {
		if snap, err := s.Snapshot(ctx); err == nil {
			persistErr = h.manager.Save(ctx, id, snap)
		}
	}
	s.Close()
	if h.onClose != nil {
		h.onClose(s)
	}
	h.logger.Info("session closed", "session", id)
	return persistErr
}

// Shutdown closes every live session.
func (h *Hub) Shutdown(ctx context.Context) error {
	var errs []error
	for _, id := range h.List() {
		if err := h.Close(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
