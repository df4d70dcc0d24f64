package visibility

import (
	"maps"

	"github.com/aretw0/psdrun/pkg/domain"
)

// Overrides is a sparse layer id to visibility map. An absent id means the
// authored visibility applies.
type Overrides map[int]bool

// Own returns the own visibility of l under o.
func (o Overrides) Own(l domain.LayerNode) bool {
	if v, ok := o[l.ID]; ok {
		return v
	}
	return l.Visible
}

// Clone returns an independent copy. Cloning nil yields an empty map.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	maps.Copy(out, o)
	return out
}

// Apply merges batch into o and returns the entries whose value changed.
func (o Overrides) Apply(batch map[int]bool) map[int]bool {
	changed := make(map[int]bool)
	for id, v := range batch {
		if prev, ok := o[id]; ok && prev == v {
			continue
		}
		o[id] = v
		changed[id] = v
	}
	return changed
}
