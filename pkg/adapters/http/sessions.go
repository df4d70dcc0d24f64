package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/psdrun"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/session"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.hub.List()})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	doc := req.Document
	if doc == nil {
		parsed, err := s.parser.Parse(ctx, []byte(req.Dump))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid layer dump: " + err.Error()})
			return
		}
		doc = parsed
	}

	var (
		sess *psdrun.Session
		err  error
	)
	if req.Resume {
		cfg, perr := interaction.Parse(req.Config)
		if perr != nil {
			s.writeError(w, perr)
			return
		}
		sess, err = s.hub.Resume(ctx, doc, req.ID, cfg)
	} else {
		sess, err = s.hub.Open(doc, req.ID)
		if err == nil && req.Config != "" {
			if cerr := sess.SetConfigText(ctx, req.Config); cerr != nil {
				_ = s.hub.Close(ctx, sess.ID())
				s.writeError(w, cerr)
				return
			}
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	docKey := req.DocKey
	if docKey == "" {
		docKey = sess.ID()
	}
	s.mu.Lock()
	s.docKeys[sess.ID()] = docKey
	s.mu.Unlock()

	resp, err := s.describe(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) describe(r *http.Request, sess *psdrun.Session) (*SessionResponse, error) {
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}
	tree := sess.Tree()
	return &SessionResponse{
		ID:       sess.ID(),
		DocKey:   s.docKey(sess.ID()),
		Width:    tree.Width(),
		Height:   tree.Height(),
		Layers:   tree.Len(),
		Snapshot: snap,
	}, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp, err := s.describe(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.hub.Close(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	delete(s.docKeys, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ConfigRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := sess.SetConfigText(r.Context(), req.Text); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, true, 0)
}

func (s *Server) clearConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, true, 0)
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var action domain.Action
	if !s.decode(w, r, &action) {
		return
	}
	applied, err := sess.Dispatch(r.Context(), action)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, applied, 0)
}

func (s *Server) postClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ClickRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		layerID int
		applied bool
		err     error
	)
	if req.LayerID != nil {
		layerID = *req.LayerID
		applied, err = sess.Click(r.Context(), layerID)
	} else {
		layerID, applied, err = sess.ClickAt(r.Context(), req.At.X, req.At.Y)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, applied, layerID)
}

func (s *Server) postOverride(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req OverrideRequest
	if !s.decode(w, r, &req) {
		return
	}
	applied, err := sess.SetOverride(r.Context(), *req.LayerID, *req.Visible)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, applied, *req.LayerID)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, sess *psdrun.Session, applied bool, layerID int) {
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Applied: applied, LayerID: layerID, Snapshot: snap})
}

func (s *Server) getVisibility(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	visible, err := sess.Visible(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[int]bool{"visible": visible})
}

// hints returns the stored hints of the session's document. Without a
// manager every layer exports with its default hint.
func (s *Server) hints(r *http.Request, sess *psdrun.Session) (*domain.HintSet, error) {
	if s.manager == nil {
		return nil, nil
	}
	hints, err := s.manager.LoadHints(r.Context(), s.docKey(sess.ID()))
	if errors.Is(err, session.ErrNoHintStore) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	restored, _ := sess.Tree().RestoreHints(hints)
	return restored, nil
}

func (s *Server) getLayers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	hints, err := s.hints(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Export(hints))
}

func (s *Server) getHints(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.manager == nil {
		s.writeError(w, session.ErrNoHintStore)
		return
	}
	hints, err := s.manager.LoadHints(r.Context(), s.docKey(sess.ID()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	restored, _ := sess.Tree().RestoreHints(hints)
	writeJSON(w, http.StatusOK, restored)
}

func (s *Server) putHints(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.manager == nil {
		s.writeError(w, session.ErrNoHintStore)
		return
	}
	var in domain.HintSet
	if !s.decode(w, r, &in) {
		return
	}

	tree := sess.Tree()
	restored, n := tree.RestoreHints(&in)
	err := s.manager.UpdateHints(r.Context(), s.docKey(sess.ID()), func(h *domain.HintSet) error {
		*h = *tree.CollectHints(restored)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HintsResponse{Restored: n})
}

func (s *Server) postSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.hub.Persist(r.Context(), sess.ID()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
