package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/psdrun/pkg/domain"
)

type bridgeLayer struct {
	node    domain.LayerNode
	visible bool
	text    string
}

// Bridge is a headless ports.RenderBridge. It tracks per-layer visibility and
// text the way a compositor would and returns a transparent frame of document
// size, which is enough to run and test prototypes without pixels.
type Bridge struct {
	mu      sync.Mutex
	width   int
	height  int
	layers  map[int]*bridgeLayer
	applies int
}

// NewBridge loads the authored state of doc.
func NewBridge(doc *domain.Document) *Bridge {
	b := &Bridge{width: doc.Width, height: doc.Height, layers: make(map[int]*bridgeLayer)}
	for _, n := range doc.Layers {
		if n.Kind == domain.KindGroupEnd {
			continue
		}
		b.layers[n.ID] = &bridgeLayer{node: n, visible: n.Visible, text: n.Text}
	}
	return b
}

// ApplyVisibilityBatch resets every layer to its authored visibility and then
// applies the override snapshot. Unknown ids are skipped.
func (b *Bridge) ApplyVisibilityBatch(ctx context.Context, hidden, shown []int) (domain.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bitmap{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, l := range b.layers {
		l.visible = l.node.Visible
	}
	for _, id := range hidden {
		if l, ok := b.layers[id]; ok {
			l.visible = false
		}
	}
	for _, id := range shown {
		if l, ok := b.layers[id]; ok {
			l.visible = true
		}
	}
	b.applies++
	return domain.NewBitmap(b.width, b.height), nil
}

// SetLayerText replaces the text of a text layer.
func (b *Bridge) SetLayerText(ctx context.Context, layerID int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.layers[layerID]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrLayerNotFound, layerID)
	}
	if !l.node.IsText() {
		return fmt.Errorf("%w: %d", domain.ErrNotTextLayer, layerID)
	}
	l.text = text
	return nil
}

// LayerImage returns a transparent image covering the layer's rect.
func (b *Bridge) LayerImage(ctx context.Context, layerID int) (domain.LayerImage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.layers[layerID]
	if !ok {
		return domain.LayerImage{}, fmt.Errorf("%w: %d", domain.ErrLayerNotFound, layerID)
	}
	r := l.node.Rect
	return domain.LayerImage{X: r.X, Y: r.Y, Bitmap: domain.NewBitmap(r.W, r.H)}, nil
}

// Visible reports the composited visibility of a layer after the last batch.
func (b *Bridge) Visible(layerID int) (visible, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.layers[layerID]
	if !ok {
		return false, false
	}
	return l.visible, true
}

// Text returns the current text of a layer.
func (b *Bridge) Text(layerID int) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.layers[layerID]
	if !ok {
		return "", false
	}
	return l.text, true
}

// Applies counts recomposites.
func (b *Bridge) Applies() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applies
}
