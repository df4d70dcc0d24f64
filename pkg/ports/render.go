package ports

import (
	"context"

	"github.com/aretw0/psdrun/pkg/domain"
)

// RenderBridge is the compositor the runtime drives.
// Implementations may be asynchronous internally but each call returns only
// once its effect is applied.
type RenderBridge interface {
	// ApplyVisibilityBatch applies the override snapshot (ids forced hidden and
	// ids forced shown) and returns the recomposited document.
	ApplyVisibilityBatch(ctx context.Context, hidden, shown []int) (domain.Bitmap, error)

	// SetLayerText replaces the text of a text layer. It does not recomposite.
	SetLayerText(ctx context.Context, layerID int, text string) error
}

// LayerImager renders single layers, used by inspectors and hit-test overlays.
type LayerImager interface {
	LayerImage(ctx context.Context, layerID int) (domain.LayerImage, error)
}

// DocumentParser turns document bytes into the flat layer sequence.
type DocumentParser interface {
	Parse(ctx context.Context, data []byte) (*domain.Document, error)
}
