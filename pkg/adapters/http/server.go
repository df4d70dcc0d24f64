// Package http exposes psdrun sessions over a JSON API with chi.
//
// Sessions are created from a layer document, configured with a model reply
// and then driven with clicks, actions and visibility overrides. State
// changes stream to clients as StateDiff events over SSE, and the newest
// composited frame is served as PNG.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/psdrun"
	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/aretw0/psdrun/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Server routes HTTP requests to the sessions of a hub.
type Server struct {
	hub      *psdrun.Hub
	manager  *session.Manager
	parser   ports.DocumentParser
	logger   *slog.Logger
	validate *validator.Validate
	metrics  http.Handler
	origins  []string

	mu      sync.RWMutex
	docKeys map[string]string
}

// Option configures a Server.
type Option func(*Server)

// WithManager enables the hint endpoints and snapshot persistence.
func WithManager(m *session.Manager) Option {
	return func(s *Server) {
		s.manager = m
	}
}

// WithParser sets the parser for raw layer dumps. Defaults to file.Parser.
func WithParser(p ports.DocumentParser) Option {
	return func(s *Server) {
		s.parser = p
	}
}

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithCORSOrigins restricts the allowed origins. Defaults to "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a server over hub.
func NewServer(hub *psdrun.Hub, opts ...Option) *Server {
	s := &Server{
		hub:      hub,
		parser:   file.NewParser(),
		logger:   logging.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		docKeys:  map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.cors)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Put("/config", s.putConfig)
			r.Delete("/config", s.clearConfig)
			r.Post("/actions", s.postAction)
			r.Post("/click", s.postClick)
			r.Post("/overrides", s.postOverride)
			r.Get("/visibility", s.getVisibility)
			r.Get("/layers", s.getLayers)
			r.Get("/hints", s.getHints)
			r.Put("/hints", s.putHints)
			r.Post("/snapshot", s.postSnapshot)
			r.Get("/frame", s.getFrame)
			r.Get("/events", s.subscribeEvents)
		})
	})
	return r
}

// NewHandler is a shortcut for NewServer(hub, opts...).Handler().
func NewHandler(hub *psdrun.Hub, opts ...Option) http.Handler {
	return NewServer(hub, opts...).Handler()
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.origins) > 0 {
			origin = ""
			if o := r.Header.Get("Origin"); slices.Contains(s.origins, o) {
				origin = o
				w.Header().Add("Vary", "Origin")
			}
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  strings.TrimSpace(psdrun.Version),
		"sessions": len(s.hub.List()),
	})
}

// session resolves the {id} path parameter, writing 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*psdrun.Session, bool) {
	sess, err := s.hub.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) docKey(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k, ok := s.docKeys[id]; ok {
		return k
	}
	return id
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var cfgErr *interaction.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		status = http.StatusUnprocessableEntity
		resp.Stage = string(cfgErr.Stage)
		resp.Issues = issuesFrom(cfgErr.Issues)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrLayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoConfig), errors.Is(err, psdrun.ErrSessionExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownAction), errors.Is(err, domain.ErrUnbalancedTree):
		status = http.StatusBadRequest
	case errors.Is(err, psdrun.ErrSessionClosed):
		status = http.StatusGone
	case errors.Is(err, session.ErrNoHintStore):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}
