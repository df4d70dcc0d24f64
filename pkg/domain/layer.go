package domain

// LayerKind tags an entry of the flattened pre-order layer sequence.
type LayerKind string

const (
	KindLayer    LayerKind = "layer"
	KindGroup    LayerKind = "group"
	KindGroupEnd LayerKind = "groupEnd"
)

// ItemType describes what a leaf layer carries.
type ItemType string

const (
	ItemText    ItemType = "text"
	ItemShape   ItemType = "shape"
	ItemImage   ItemType = "image"
	ItemFolder  ItemType = "folder"
	ItemUnknown ItemType = "unknown"
)

// Rect is an axis-aligned rectangle in document pixels.
type Rect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"width" yaml:"width"`
	H int `json:"height" yaml:"height"`
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Union returns the smallest rectangle containing both r and o.
// Empty rectangles do not contribute.
func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	if r.Empty() {
		return o
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// LayerNode is one entry of the flattened layer sequence.
// Group entries precede their children and are closed by a KindGroupEnd sentinel.
type LayerNode struct {
	ID        int       `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Rect      Rect      `json:"rect" yaml:"rect"`
	Visible   bool      `json:"visible" yaml:"visible"`
	Opacity   uint8     `json:"opacity" yaml:"opacity"`
	BlendMode BlendMode `json:"blendMode" yaml:"blendMode"`
	Kind      LayerKind `json:"type" yaml:"type"`
	ItemType  ItemType  `json:"itemType,omitempty" yaml:"itemType,omitempty"`
	Text      string    `json:"text,omitempty" yaml:"text,omitempty"`
}

// IsGroup reports whether the node opens a group.
func (n LayerNode) IsGroup() bool { return n.Kind == KindGroup }

// IsText reports whether the node is a text leaf.
func (n LayerNode) IsText() bool { return n.Kind == KindLayer && n.ItemType == ItemText }

// Document is a parsed design document: canvas size plus its layer sequence.
type Document struct {
	Width  int         `json:"width" yaml:"width"`
	Height int         `json:"height" yaml:"height"`
	Layers []LayerNode `json:"layers" yaml:"layers"`
}
