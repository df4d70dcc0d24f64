package layertree

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func group(id int, name string) domain.LayerNode {
	return domain.LayerNode{ID: id, Name: name, Kind: domain.KindGroup, Visible: true, ItemType: domain.ItemFolder}
}

func end(id int) domain.LayerNode {
	return domain.LayerNode{ID: id, Kind: domain.KindGroupEnd}
}

func leaf(id int, name string, r domain.Rect) domain.LayerNode {
	return domain.LayerNode{ID: id, Name: name, Kind: domain.KindLayer, Visible: true, Rect: r, ItemType: domain.ItemShape}
}

// screens: [group 1 [leaf 2, group 3 [leaf 4] ], leaf 5]
func sample() []domain.LayerNode {
	return []domain.LayerNode{
		group(1, "home"),
		leaf(2, "bg", domain.Rect{X: 0, Y: 0, W: 100, H: 50}),
		group(3, "card"),
		leaf(4, "title", domain.Rect{X: 10, Y: 60, W: 20, H: 20}),
		end(3),
		end(1),
		leaf(5, "status", domain.Rect{X: 0, Y: 0, W: 10, H: 10}),
	}
}

func TestNew_Indexes(t *testing.T) {
	tree, err := New(sample())
	require.NoError(t, err)

	assert.Equal(t, 7, tree.Len())
	i, ok := tree.IndexOf(3)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, 4, tree.EndIndex(i))
	assert.Equal(t, 1, tree.Depth(i))

	assert.Equal(t, []int{3, 1}, tree.Ancestors(4))
	assert.Empty(t, tree.Ancestors(5))
	assert.Nil(t, tree.Ancestors(99))
	assert.Equal(t, []int{2, 3, 4}, tree.Descendants(1))
	assert.Nil(t, tree.Descendants(2))

	// groupEnd sentinels sit at their group's depth and parent
	assert.Equal(t, 0, tree.Depth(5))
	assert.Equal(t, -1, tree.ParentIndex(5))
}

func TestNew_Unbalanced(t *testing.T) {
	tests := []struct {
		name   string
		layers []domain.LayerNode
		index  int
	}{
		{"stray groupEnd", []domain.LayerNode{leaf(1, "a", domain.Rect{}), end(9)}, 1},
		{"unclosed group", []domain.LayerNode{group(1, "g"), leaf(2, "a", domain.Rect{})}, 0},
		{"unknown kind", []domain.LayerNode{{ID: 1, Kind: "mask"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.layers)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnbalancedTree)
			var te *TreeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.index, te.Index)
		})
	}
}

func TestNew_DuplicateID(t *testing.T) {
	_, err := New([]domain.LayerNode{leaf(1, "a", domain.Rect{}), leaf(1, "b", domain.Rect{})})
	assert.ErrorIs(t, err, ErrDuplicateLayer)
}

func TestNew_CopiesInput(t *testing.T) {
	in := sample()
	tree, err := New(in)
	require.NoError(t, err)
	in[1].Name = "mutated"
	l, _ := tree.Layer(2)
	assert.Equal(t, "bg", l.Name)
}

func TestComputeGroupBounds(t *testing.T) {
	tree, err := New(sample())
	require.NoError(t, err)

	inner, _ := tree.Layer(3)
	assert.Equal(t, domain.Rect{X: 10, Y: 60, W: 20, H: 20}, inner.Rect)

	outer, _ := tree.Layer(1)
	assert.Equal(t, domain.Rect{X: 0, Y: 0, W: 100, H: 80}, outer.Rect)
}

func TestComputeGroupBounds_KeepsAuthoredRect(t *testing.T) {
	g := group(1, "g")
	g.Rect = domain.Rect{X: 5, Y: 5, W: 1, H: 1}
	out := ComputeGroupBounds([]domain.LayerNode{
		g,
		leaf(2, "a", domain.Rect{W: 50, H: 50}),
		end(1),
	})
	assert.Equal(t, domain.Rect{X: 5, Y: 5, W: 1, H: 1}, out[0].Rect)
}

func TestComputeGroupBounds_EmptyGroupStaysEmpty(t *testing.T) {
	out := ComputeGroupBounds([]domain.LayerNode{group(1, "g"), leaf(2, "a", domain.Rect{}), end(1)})
	assert.True(t, out[0].Rect.Empty())
}

func TestExport(t *testing.T) {
	layers := sample()
	layers[3].ItemType = domain.ItemText
	layers[3].Text = "Hello"
	layers[3].Opacity = 255
	tree, err := FromDocument(&domain.Document{Width: 320, Height: 240, Layers: layers})
	require.NoError(t, err)

	hints := domain.NewHintSet()
	hints.Set(4, domain.LayerHint{Type: domain.HintNative, Visible: false, Properties: []string{"b", "a"}})

	ex := tree.Export(hints)
	assert.Equal(t, 320, ex.Width)
	require.Len(t, ex.Layers, 2)

	home := ex.Layers[0]
	assert.Equal(t, "folder", home.Type)
	assert.Equal(t, 2, home.ChildCount)
	card := home.Children[1]
	require.Len(t, card.Children, 1)

	title := card.Children[0]
	assert.Equal(t, "text", title.Type)
	assert.Equal(t, "native", title.HintType)
	assert.False(t, title.HintVisible)
	assert.Equal(t, []string{"a", "b"}, title.HintProperties)
	assert.InDelta(t, 1.0, title.Opacity, 1e-9)

	assert.Equal(t, "embed", ex.Layers[1].HintType)
	assert.True(t, ex.Layers[1].HintVisible)

	raw, err := tree.ExportJSON(nil)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "layers")
}

func TestRestoreHints(t *testing.T) {
	tree, err := New(sample())
	require.NoError(t, err)

	in := &domain.HintSet{Version: 1, Layers: map[string]domain.LayerHint{
		"2":   {Type: domain.HintSkip, Visible: true},
		"4":   {Type: domain.HintMerge, Visible: true},
		"999": {Type: domain.HintSkip},
		"abc": {Type: domain.HintSkip},
	}}
	out, restored := tree.RestoreHints(in)
	assert.Equal(t, 2, restored)
	assert.Len(t, out.Layers, 2)
	assert.Equal(t, domain.HintMerge, out.Get(4).Type)

	collected := tree.CollectHints(out)
	assert.Len(t, collected.Layers, 2)
}
