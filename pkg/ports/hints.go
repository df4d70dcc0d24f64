package ports

import (
	"context"

	"github.com/aretw0/psdrun/pkg/domain"
)

// HintStore persists per-document export hints and the model API key.
type HintStore interface {
	// LoadHints returns domain.ErrHintsNotFound when nothing was saved for docKey.
	LoadHints(ctx context.Context, docKey string) (*domain.HintSet, error)
	SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error
	DeleteHints(ctx context.Context, docKey string) error

	// LoadAPIKey returns an empty string and no error when no key was saved.
	LoadAPIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, key string) error
}
