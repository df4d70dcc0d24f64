package layertree

import (
	"slices"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ComputeGroupBounds returns a copy of layers in which every group with a
// zero-area rect takes the union of its descendants' nonzero rects.
// Groups are resolved innermost first, so a nested group that was itself
// derived contributes its derived rect. Groups with an authored rect are
// left untouched.
func ComputeGroupBounds(layers []domain.LayerNode) []domain.LayerNode {
	out := slices.Clone(layers)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Kind != domain.KindGroup || !out[i].Rect.Empty() {
			continue
		}
		var bounds domain.Rect
		depth := 0
	scan:
		for j := i + 1; j < len(out); j++ {
			switch out[j].Kind {
			case domain.KindGroup:
				depth++
			case domain.KindGroupEnd:
				if depth == 0 {
					break scan
				}
				depth--
				continue
			}
			bounds = bounds.Union(out[j].Rect)
		}
		out[i].Rect = bounds
	}
	return out
}
