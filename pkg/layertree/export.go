package layertree

import (
	"encoding/json"
	"slices"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ExportNode is one layer of the nested tree export.
type ExportNode struct {
	LayerID        int           `json:"layerId"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Rect           domain.Rect   `json:"rect"`
	Opacity        float64       `json:"opacity"`
	Visible        bool          `json:"visible"`
	BlendMode      string        `json:"blendMode,omitempty"`
	Text           string        `json:"text,omitempty"`
	ChildCount     int           `json:"childCount,omitempty"`
	HintType       string        `json:"hintType"`
	HintVisible    bool          `json:"hintVisible"`
	HintProperties []string      `json:"hintProperties,omitempty"`
	Children       []*ExportNode `json:"children,omitempty"`
}

// Export is the document-level tree export.
type Export struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Layers []*ExportNode `json:"layers"`
}

// Export nests the flat sequence and annotates every node with its hint.
// A nil hint set exports default hints.
func (t *Tree) Export(hints *domain.HintSet) *Export {
	root := &ExportNode{}
	stack := []*ExportNode{root}
	for _, l := range t.layers {
		top := stack[len(stack)-1]
		if l.Kind == domain.KindGroupEnd {
			top.ChildCount = len(top.Children)
			stack = stack[:len(stack)-1]
			continue
		}
		hint := hints.Get(l.ID)
		node := &ExportNode{
			LayerID:        l.ID,
			Name:           l.Name,
			Type:           exportType(l),
			Rect:           l.Rect,
			Opacity:        float64(l.Opacity) / 255,
			Visible:        l.Visible,
			Text:           l.Text,
			HintType:       hint.Type.String(),
			HintVisible:    hint.Visible,
			HintProperties: sortedCopy(hint.Properties),
		}
		if l.BlendMode != "" {
			node.BlendMode = string(l.BlendMode)
		}
		top.Children = append(top.Children, node)
		if l.Kind == domain.KindGroup {
			stack = append(stack, node)
		}
	}
	return &Export{Width: t.width, Height: t.height, Layers: root.Children}
}

// ExportJSON renders Export as compact JSON.
func (t *Tree) ExportJSON(hints *domain.HintSet) ([]byte, error) {
	return json.Marshal(t.Export(hints))
}

func exportType(l domain.LayerNode) string {
	if l.Kind == domain.KindGroup {
		return string(domain.ItemFolder)
	}
	if l.ItemType == "" {
		return string(domain.ItemUnknown)
	}
	return string(l.ItemType)
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
