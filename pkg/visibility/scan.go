package visibility

import "github.com/aretw0/psdrun/pkg/domain"

// indexOf finds the layer or group entry carrying id. groupEnd sentinels
// share their group's id and are skipped.
func indexOf(layers []domain.LayerNode, id int) int {
	for i, l := range layers {
		if l.ID == id && l.Kind != domain.KindGroupEnd {
			return i
		}
	}
	return -1
}

// walkAncestors scans backward from index i and calls fn for every enclosing
// group, innermost first, until fn returns false.
//
// A groupEnd met on the way closes a sibling subtree and raises the depth; the
// group opening that subtree lowers it again. Only groups met at depth 0
// enclose i.
func walkAncestors(layers []domain.LayerNode, i int, fn func(j int) bool) {
	depth := 0
	for j := i - 1; j >= 0; j-- {
		switch layers[j].Kind {
		case domain.KindGroupEnd:
			depth++
		case domain.KindGroup:
			if depth > 0 {
				depth--
				continue
			}
			if !fn(j) {
				return
			}
		}
	}
}

// Effective reports whether layerID is effectively visible by scanning the
// flat sequence backward. Unknown ids are not visible.
//
// It needs no tree index and is the reference the Resolver is checked
// against; the runtime itself uses Resolver.
func Effective(layers []domain.LayerNode, layerID int, overrides Overrides) bool {
	i := indexOf(layers, layerID)
	if i < 0 {
		return false
	}
	if !overrides.Own(layers[i]) {
		return false
	}
	visible := true
	walkAncestors(layers, i, func(j int) bool {
		visible = overrides.Own(layers[j])
		return visible
	})
	return visible
}

// EnclosingGroup returns the id of the innermost group around layerID for
// which match returns true. One-shot callers such as config flow analysis use
// it directly on the layer sequence.
func EnclosingGroup(layers []domain.LayerNode, layerID int, match func(groupID int) bool) (int, bool) {
	i := indexOf(layers, layerID)
	if i < 0 {
		return 0, false
	}
	found, ok := 0, false
	walkAncestors(layers, i, func(j int) bool {
		if match(layers[j].ID) {
			found, ok = layers[j].ID, true
			return false
		}
		return true
	})
	return found, ok
}
