package layertree

import (
	"strconv"

	"github.com/aretw0/psdrun/pkg/domain"
)

// RestoreHints keeps only the hints whose layer exists in the tree and
// returns them with the number restored. Keys that are not layer ids are dropped.
func (t *Tree) RestoreHints(in *domain.HintSet) (*domain.HintSet, int) {
	out := domain.NewHintSet()
	if in == nil {
		return out, 0
	}
	restored := 0
	for key, hint := range in.Layers {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if _, ok := t.pos[id]; !ok {
			continue
		}
		out.Layers[key] = hint
		restored++
	}
	return out, restored
}

// CollectHints returns the non-default hints of existing layers, the shape
// persisted by hint stores.
func (t *Tree) CollectHints(in *domain.HintSet) *domain.HintSet {
	out := domain.NewHintSet()
	for id := range t.pos {
		if h := in.Get(id); !h.IsDefault() {
			out.Set(id, h)
		}
	}
	return out
}
