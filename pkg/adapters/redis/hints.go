package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/psdrun/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

func (s *Store) LoadHints(ctx context.Context, docKey string) (*domain.HintSet, error) {
	val, err := s.client.Get(ctx, s.hintKey(docKey)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrHintsNotFound
		}
		return nil, fmt.Errorf("failed to get hints from redis: %w", err)
	}
	var hints domain.HintSet
	if err := json.Unmarshal(val, &hints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hints: %w", err)
	}
	return &hints, nil
}

func (s *Store) SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error {
	data, err := json.Marshal(hints)
	if err != nil {
		return fmt.Errorf("failed to marshal hints: %w", err)
	}
	if err := s.client.Set(ctx, s.hintKey(docKey), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save hints to redis: %w", err)
	}
	return nil
}

func (s *Store) DeleteHints(ctx context.Context, docKey string) error {
	return s.client.Del(ctx, s.hintKey(docKey)).Err()
}

func (s *Store) LoadAPIKey(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.apiKeyKey()).Result()
	if errors.Is(err, backend.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get api key from redis: %w", err)
	}
	return val, nil
}

func (s *Store) SaveAPIKey(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.apiKeyKey(), key, 0).Err()
}
