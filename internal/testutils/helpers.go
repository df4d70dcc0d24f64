package testutils

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/stretchr/testify/require"
)

// Group, End and Leaf build layer sequence entries for fixtures.
func Group(id int, name string) domain.LayerNode {
	return domain.LayerNode{ID: id, Name: name, Kind: domain.KindGroup, Visible: true, ItemType: domain.ItemFolder, Opacity: 255}
}

func End(id int) domain.LayerNode {
	return domain.LayerNode{ID: id, Kind: domain.KindGroupEnd}
}

func Leaf(id int, name string, r domain.Rect) domain.LayerNode {
	return domain.LayerNode{ID: id, Name: name, Kind: domain.KindLayer, Visible: true, Rect: r, ItemType: domain.ItemShape, Opacity: 255}
}

func Text(id int, name, text string, r domain.Rect) domain.LayerNode {
	return domain.LayerNode{ID: id, Name: name, Kind: domain.KindLayer, Visible: true, Rect: r, ItemType: domain.ItemText, Text: text, Opacity: 255}
}

// MustTree builds a layer tree or fails the test immediately.
func MustTree(t testing.TB, layers ...domain.LayerNode) *layertree.Tree {
	t.Helper()
	tree, err := layertree.New(layers)
	require.NoError(t, err, "fixture layer sequence must be balanced")
	return tree
}

// RecordingSink collects the render requests submitted by an engine.
type RecordingSink struct {
	mu       sync.Mutex
	requests []domain.RenderRequest
}

func (s *RecordingSink) Submit(_ context.Context, req domain.RenderRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

// Requests returns a copy of everything submitted so far.
func (s *RecordingSink) Requests() []domain.RenderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RenderRequest(nil), s.requests...)
}

// Last returns the most recent request, or false when none was submitted.
func (s *RecordingSink) Last() (domain.RenderRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return domain.RenderRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Len returns the number of requests submitted.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Reset forgets recorded requests.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}
