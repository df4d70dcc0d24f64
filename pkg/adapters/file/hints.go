package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
)

const apiKeyFile = "apikey"

// HintStore implements ports.HintStore as sidecar files: one
// "<doc>.hints.json" per document and a 0600 API key file.
type HintStore struct {
	BasePath string
}

// NewHintStore creates a hint store. If basePath is empty, it defaults to
// ".psdrun/hints".
func NewHintStore(basePath string) *HintStore {
	if basePath == "" {
		basePath = filepath.Join(".psdrun", "hints")
	}
	return &HintStore{BasePath: basePath}
}

// hintFile maps a document key, usually a path, to a flat file name.
func hintFile(docKey string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(docKey) + ".hints.json"
}

func (s *HintStore) LoadHints(ctx context.Context, docKey string) (*domain.HintSet, error) {
	data, err := os.ReadFile(filepath.Join(s.BasePath, hintFile(docKey)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrHintsNotFound
		}
		return nil, fmt.Errorf("failed to read hints file: %w", err)
	}
	var hints domain.HintSet
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hints: %w", err)
	}
	return &hints, nil
}

func (s *HintStore) SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error {
	data, err := json.MarshalIndent(hints, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hints: %w", err)
	}
	return writeAtomic(s.BasePath, hintFile(docKey), data, 0o644)
}

func (s *HintStore) DeleteHints(ctx context.Context, docKey string) error {
	err := os.Remove(filepath.Join(s.BasePath, hintFile(docKey)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete hints file: %w", err)
	}
	return nil
}

func (s *HintStore) LoadAPIKey(ctx context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.BasePath, apiKeyFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *HintStore) SaveAPIKey(ctx context.Context, key string) error {
	return writeAtomic(s.BasePath, apiKeyFile, []byte(key), 0o600)
}
