package middleware_test

import (
	"context"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/ports"
)

// MockStore is a simple map-based hint store for testing middleware.
type MockStore struct {
	hints  map[string]*domain.HintSet
	apiKey string
}

func NewMockStore() *MockStore {
	return &MockStore{hints: make(map[string]*domain.HintSet)}
}

func (s *MockStore) LoadHints(ctx context.Context, docKey string) (*domain.HintSet, error) {
	h, ok := s.hints[docKey]
	if !ok {
		return nil, domain.ErrHintsNotFound
	}
	return h, nil
}

func (s *MockStore) SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error {
	s.hints[docKey] = hints
	return nil
}

func (s *MockStore) DeleteHints(ctx context.Context, docKey string) error {
	delete(s.hints, docKey)
	return nil
}

func (s *MockStore) LoadAPIKey(ctx context.Context) (string, error) { return s.apiKey, nil }

func (s *MockStore) SaveAPIKey(ctx context.Context, key string) error {
	s.apiKey = key
	return nil
}

var _ ports.HintStore = (*MockStore)(nil)
