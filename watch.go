package psdrun

import (
	"context"
	"errors"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ErrSessionClosed is returned by every session method after Close.
var ErrSessionClosed = errors.New("session closed")

// ErrSessionExists is returned by Hub.Open for an id already in use.
var ErrSessionExists = errors.New("session already open")

// sessionSink forwards render requests to the pipeline and publishes the new
// state to watchers. It runs on the event loop, so reading the engine is safe.
type sessionSink struct {
	s *Session
}

func (k sessionSink) Submit(ctx context.Context, req domain.RenderRequest) {
	k.s.pipeline.Submit(ctx, req)
	k.s.publish()
}

func (s *Session) publish() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if len(s.watchers) == 0 {
		return
	}
	snap := s.engine.Snapshot()
	for ch := range s.watchers {
		// Keep only the newest snapshot for slow readers.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Watch streams a snapshot after every state change, including changes made
// by screen timers and clocks. Slow readers only see the newest snapshot.
// The channel is closed when ctx ends or the session closes.
func (s *Session) Watch(ctx context.Context) (<-chan *domain.Snapshot, error) {
	ch := make(chan *domain.Snapshot, 1)

	s.watchMu.Lock()
	if s.watchers == nil {
		s.watchMu.Unlock()
		return nil, ErrSessionClosed
	}
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.closed:
			return
		}
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}
