// Package layertree holds the immutable flattened layer sequence of a loaded
// document together with the indexes derived from it once at load time.
package layertree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ErrDuplicateLayer is returned when two entries other than a group and its
// closing sentinel share an id.
var ErrDuplicateLayer = errors.New("duplicate layer id")

// TreeError reports where a layer sequence failed validation.
type TreeError struct {
	Index  int
	Reason string
	Err    error
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("layer sequence index %d: %s: %v", e.Index, e.Reason, e.Err)
}

func (e *TreeError) Unwrap() error { return e.Err }

// Tree is an immutable, validated layer sequence.
// A group entry immediately precedes its children and is closed by a
// groupEnd sentinel; the sentinel carries the id of the group it closes.
type Tree struct {
	width, height int

	layers []domain.LayerNode
	pos    map[int]int // layer id -> index of its layer or group entry
	parent []int       // index -> index of enclosing group entry, -1 at top level
	depth  []int
	end    []int // group index -> index of its groupEnd, -1 elsewhere
}

// FromDocument builds a tree from a parsed document.
func FromDocument(doc *domain.Document) (*Tree, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document: %w", domain.ErrNoDocument)
	}
	t, err := New(doc.Layers)
	if err != nil {
		return nil, err
	}
	t.width, t.height = doc.Width, doc.Height
	return t, nil
}

// New validates the sequence, derives group bounds and builds the indexes.
// The input slice is copied.
func New(layers []domain.LayerNode) (*Tree, error) {
	n := len(layers)
	t := &Tree{
		layers: ComputeGroupBounds(layers),
		pos:    make(map[int]int, n),
		parent: make([]int, n),
		depth:  make([]int, n),
		end:    make([]int, n),
	}

	var open []int
	for i, l := range t.layers {
		t.end[i] = -1
		t.parent[i] = -1
		if len(open) > 0 {
			t.parent[i] = open[len(open)-1]
		}
		t.depth[i] = len(open)

		switch l.Kind {
		case domain.KindGroup:
			if err := t.register(i, l.ID); err != nil {
				return nil, err
			}
			open = append(open, i)
		case domain.KindGroupEnd:
			if len(open) == 0 {
				return nil, &TreeError{Index: i, Reason: "groupEnd without open group", Err: domain.ErrUnbalancedTree}
			}
			g := open[len(open)-1]
			open = open[:len(open)-1]
			t.end[g] = i
			// The sentinel sits at the depth of the group it closes.
			t.parent[i] = t.parent[g]
			t.depth[i] = t.depth[g]
		case domain.KindLayer, "":
			t.layers[i].Kind = domain.KindLayer
			if err := t.register(i, l.ID); err != nil {
				return nil, err
			}
		default:
			return nil, &TreeError{Index: i, Reason: fmt.Sprintf("unknown kind %q", l.Kind), Err: domain.ErrUnbalancedTree}
		}
	}
	if len(open) > 0 {
		g := open[len(open)-1]
		return nil, &TreeError{Index: g, Reason: "group never closed", Err: domain.ErrUnbalancedTree}
	}
	return t, nil
}

func (t *Tree) register(i, id int) error {
	if prev, dup := t.pos[id]; dup {
		return &TreeError{Index: i, Reason: fmt.Sprintf("id %d already used at index %d", id, prev), Err: ErrDuplicateLayer}
	}
	t.pos[id] = i
	return nil
}

// Width of the document canvas.
func (t *Tree) Width() int { return t.width }

// Height of the document canvas.
func (t *Tree) Height() int { return t.height }

// Len returns the number of entries, sentinels included.
func (t *Tree) Len() int { return len(t.layers) }

// At returns the entry at index i.
func (t *Tree) At(i int) domain.LayerNode { return t.layers[i] }

// Layers returns a copy of the sequence with derived group bounds.
func (t *Tree) Layers() []domain.LayerNode { return slices.Clone(t.layers) }

// IndexOf returns the index of the layer or group entry with the given id.
func (t *Tree) IndexOf(id int) (int, bool) {
	i, ok := t.pos[id]
	return i, ok
}

// Layer looks up an entry by id.
func (t *Tree) Layer(id int) (domain.LayerNode, bool) {
	i, ok := t.pos[id]
	if !ok {
		return domain.LayerNode{}, false
	}
	return t.layers[i], true
}

// ParentIndex returns the index of the group enclosing entry i, or -1.
func (t *Tree) ParentIndex(i int) int { return t.parent[i] }

// Depth returns the nesting depth of entry i; top-level entries are at 0.
func (t *Tree) Depth(i int) int { return t.depth[i] }

// EndIndex returns the index of the groupEnd closing the group at i, or -1
// when i is not a group.
func (t *Tree) EndIndex(i int) int { return t.end[i] }

// Ancestors returns the ids of the groups enclosing id, innermost first.
func (t *Tree) Ancestors(id int) []int {
	i, ok := t.pos[id]
	if !ok {
		return nil
	}
	var out []int
	for p := t.parent[i]; p >= 0; p = t.parent[p] {
		out = append(out, t.layers[p].ID)
	}
	return out
}

// Descendants returns the ids of every layer and group inside group id.
func (t *Tree) Descendants(id int) []int {
	i, ok := t.pos[id]
	if !ok || t.end[i] < 0 {
		return nil
	}
	var out []int
	for j := i + 1; j < t.end[i]; j++ {
		if t.layers[j].Kind != domain.KindGroupEnd {
			out = append(out, t.layers[j].ID)
		}
	}
	return out
}

// TextLayers returns the ids of every text leaf.
func (t *Tree) TextLayers() []int {
	var out []int
	for _, l := range t.layers {
		if l.IsText() {
			out = append(out, l.ID)
		}
	}
	return out
}
