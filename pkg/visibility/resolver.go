package visibility

import (
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/layertree"
)

// Resolver answers visibility queries against one loaded tree using its
// precomputed parent index.
type Resolver struct {
	tree *layertree.Tree
}

// NewResolver binds a resolver to a tree.
func NewResolver(tree *layertree.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Tree returns the bound tree.
func (r *Resolver) Tree() *layertree.Tree { return r.tree }

// Effective reports whether layerID and all its enclosing groups are visible.
func (r *Resolver) Effective(layerID int, overrides Overrides) bool {
	i, ok := r.tree.IndexOf(layerID)
	if !ok {
		return false
	}
	for ; i >= 0; i = r.tree.ParentIndex(i) {
		if !overrides.Own(r.tree.At(i)) {
			return false
		}
	}
	return true
}

// EnclosingGroup returns the innermost enclosing group for which match is true.
func (r *Resolver) EnclosingGroup(layerID int, match func(groupID int) bool) (int, bool) {
	i, ok := r.tree.IndexOf(layerID)
	if !ok {
		return 0, false
	}
	for p := r.tree.ParentIndex(i); p >= 0; p = r.tree.ParentIndex(p) {
		if id := r.tree.At(p).ID; match(id) {
			return id, true
		}
	}
	return 0, false
}

// VisibleSet evaluates every layer and group of the tree at once.
func (r *Resolver) VisibleSet(overrides Overrides) map[int]bool {
	n := r.tree.Len()
	eff := make([]bool, n)
	out := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		l := r.tree.At(i)
		if l.Kind == domain.KindGroupEnd {
			continue
		}
		v := overrides.Own(l)
		if p := r.tree.ParentIndex(i); p >= 0 {
			v = v && eff[p]
		}
		eff[i] = v
		out[l.ID] = v
	}
	return out
}
