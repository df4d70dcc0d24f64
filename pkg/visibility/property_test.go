package visibility

import (
	"testing"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildTree turns an op stream into a balanced layer sequence:
// 0 opens a group, 1 adds a leaf, 2 closes the innermost open group.
func buildTree(ops []int, visible []bool) []domain.LayerNode {
	var layers []domain.LayerNode
	var open []int
	next := 1
	vis := func() bool {
		if len(visible) == 0 {
			return true
		}
		return visible[next%len(visible)]
	}
	for _, op := range ops {
		switch op {
		case 0:
			layers = append(layers, domain.LayerNode{ID: next, Kind: domain.KindGroup, Visible: vis()})
			open = append(open, next)
			next++
		case 1:
			layers = append(layers, domain.LayerNode{ID: next, Kind: domain.KindLayer, Visible: vis()})
			next++
		case 2:
			if len(open) == 0 {
				continue
			}
			layers = append(layers, domain.LayerNode{ID: open[len(open)-1], Kind: domain.KindGroupEnd})
			open = open[:len(open)-1]
		}
	}
	for len(open) > 0 {
		layers = append(layers, domain.LayerNode{ID: open[len(open)-1], Kind: domain.KindGroupEnd})
		open = open[:len(open)-1]
	}
	return layers
}

func overridesFrom(ids []int, hide []bool) Overrides {
	o := Overrides{}
	for i, id := range ids {
		o[id] = i < len(hide) && !hide[i]
	}
	return o
}

func TestResolverAgreesWithScan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parent index and backward scan agree on every layer", prop.ForAll(
		func(ops []int, visible []bool, overrideIDs []int, hide []bool) bool {
			layers := buildTree(ops, visible)
			tree, err := layertree.New(layers)
			if err != nil {
				return false
			}
			r := NewResolver(tree)
			o := overridesFrom(overrideIDs, hide)
			set := r.VisibleSet(o)
			for _, l := range layers {
				if l.Kind == domain.KindGroupEnd {
					continue
				}
				scan := Effective(layers, l.ID, o)
				if scan != r.Effective(l.ID, o) || scan != set[l.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.IntRange(1, 30)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("a hidden ancestor hides every descendant", prop.ForAll(
		func(ops []int, pick int) bool {
			layers := buildTree(ops, nil)
			tree, err := layertree.New(layers)
			if err != nil {
				return false
			}
			var groups []int
			for _, l := range layers {
				if l.Kind == domain.KindGroup {
					groups = append(groups, l.ID)
				}
			}
			if len(groups) == 0 {
				return true
			}
			g := groups[pick%len(groups)]
			o := Overrides{g: false}
			for _, id := range tree.Descendants(g) {
				if Effective(layers, id, o) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.IntRange(0, 1000),
	))

	properties.Property("derived group bounds contain every sized descendant", prop.ForAll(
		func(ops []int, sizes []int) bool {
			layers := buildTree(ops, nil)
			for i := range layers {
				if layers[i].Kind == domain.KindLayer && len(sizes) > 0 {
					s := sizes[i%len(sizes)]
					layers[i].Rect = domain.Rect{X: s, Y: s / 2, W: s % 7, H: s % 5}
				}
			}
			tree, err := layertree.New(layers)
			if err != nil {
				return false
			}
			for i := 0; i < tree.Len(); i++ {
				g := tree.At(i)
				if g.Kind != domain.KindGroup {
					continue
				}
				for _, id := range tree.Descendants(g.ID) {
					d, _ := tree.Layer(id)
					if d.Rect.Empty() {
						continue
					}
					if g.Rect.Union(d.Rect) != g.Rect {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
