package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/patrickmn/go-cache"
)

const apiKeyKey = "apikey"

// HintStore implements ports.HintStore on an expiring in-process cache.
// Hints are stored serialised so callers never share maps with the store.
type HintStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// HintOption configures a HintStore.
type HintOption func(*HintStore)

// WithExpiration evicts hints ttl after their last save. The API key never
// expires.
func WithExpiration(ttl time.Duration) HintOption {
	return func(s *HintStore) {
		s.ttl = ttl
	}
}

// NewHintStore creates a hint store. Without WithExpiration entries live
// until deleted.
func NewHintStore(opts ...HintOption) *HintStore {
	s := &HintStore{ttl: cache.NoExpiration}
	for _, opt := range opts {
		opt(s)
	}
	cleanup := 10 * time.Minute
	if s.ttl > 0 && s.ttl < cleanup {
		cleanup = s.ttl
	}
	s.cache = cache.New(s.ttl, cleanup)
	return s
}

func hintKey(docKey string) string { return "hints:" + docKey }

func (s *HintStore) LoadHints(ctx context.Context, docKey string) (*domain.HintSet, error) {
	x, found := s.cache.Get(hintKey(docKey))
	if !found {
		return nil, domain.ErrHintsNotFound
	}
	var hints domain.HintSet
	if err := json.Unmarshal(x.([]byte), &hints); err != nil {
		return nil, fmt.Errorf("failed to decode hints for %s: %w", docKey, err)
	}
	return &hints, nil
}

func (s *HintStore) SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error {
	raw, err := json.Marshal(hints)
	if err != nil {
		return fmt.Errorf("failed to encode hints for %s: %w", docKey, err)
	}
	s.cache.Set(hintKey(docKey), raw, cache.DefaultExpiration)
	return nil
}

func (s *HintStore) DeleteHints(ctx context.Context, docKey string) error {
	s.cache.Delete(hintKey(docKey))
	return nil
}

func (s *HintStore) LoadAPIKey(ctx context.Context) (string, error) {
	if x, found := s.cache.Get(apiKeyKey); found {
		return x.(string), nil
	}
	return "", nil
}

func (s *HintStore) SaveAPIKey(ctx context.Context, key string) error {
	s.cache.Set(apiKeyKey, key, cache.NoExpiration)
	return nil
}
