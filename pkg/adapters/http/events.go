package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
)

// subscribeEvents streams StateDiff events for one session. The first event
// after the ping is the full state. The optional "watch" query parameter is a
// comma-separated list of fields (screen, popups, highlights, texts, sliders,
// overrides, timers); diffs touching none of them are skipped.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: streaming not supported")
		return
	}

	ctx := r.Context()
	snaps, err := sess.Watch(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	watch := parseWatch(r.URL.Query().Get("watch"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Info("SSE: client subscribed", "session", sess.ID())
	var last *domain.Snapshot
	if snap, err := sess.Snapshot(ctx); err == nil {
		s.send(w, flusher, domain.Diff(nil, snap), nil)
		last = snap
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SSE: client disconnected", "session", sess.ID())
			return
		case snap, ok := <-snaps:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", sess.ID())
				flusher.Flush()
				return
			}
			diff := domain.Diff(last, snap)
			last = snap
			if diff == nil {
				continue
			}
			s.send(w, flusher, diff, watch)
		}
	}
}

func (s *Server) send(w http.ResponseWriter, flusher http.Flusher, diff *domain.StateDiff, watch []string) {
	if len(watch) > 0 && !touches(diff, watch) {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("SSE: failed to encode diff", "err", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func parseWatch(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func touches(diff *domain.StateDiff, watch []string) bool {
	for _, field := range watch {
		switch field {
		case "screen":
			if diff.CurrentScreen != nil || diff.Configured != nil {
				return true
			}
		case "popups":
			if diff.ActivePopups != nil {
				return true
			}
		case "highlights":
			if len(diff.Highlights) > 0 {
				return true
			}
		case "texts":
			if len(diff.Texts) > 0 {
				return true
			}
		case "sliders":
			if len(diff.Sliders) > 0 {
				return true
			}
		case "overrides":
			if len(diff.Overrides) > 0 {
				return true
			}
		case "timers":
			if diff.PendingTimers != nil || diff.ClocksRunning != nil {
				return true
			}
		}
	}
	return false
}
