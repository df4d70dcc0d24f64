package domain

import "time"

// TextUpdate sets the runtime text of a text layer.
type TextUpdate struct {
	LayerID int    `json:"layerId"`
	Text    string `json:"text"`
}

// RenderRequest is the unit of work handed to the render pipeline by one
// logical action. Batch holds the overrides the action computed; Overrides
// is the full override snapshot after applying it.
type RenderRequest struct {
	Seq       uint64       `json:"seq"`
	Reason    string       `json:"reason,omitempty"`
	Batch     map[int]bool `json:"batch,omitempty"`
	Overrides map[int]bool `json:"overrides"`
	Texts     []TextUpdate `json:"texts,omitempty"`
}

// Hidden returns the ids overridden to invisible, in ascending order.
func (r RenderRequest) Hidden() []int { return idsWith(r.Overrides, false) }

// Shown returns the ids overridden to visible, in ascending order.
func (r RenderRequest) Shown() []int { return idsWith(r.Overrides, true) }

// Bitmap is an RGBA image, row-major, straight alpha, Width*Height*4 bytes.
type Bitmap struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"-"`
}

// NewBitmap allocates a fully transparent bitmap.
func NewBitmap(w, h int) Bitmap {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Bitmap{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
}

// LayerImage is the rendered pixels of one layer at its document position.
type LayerImage struct {
	X int `json:"x"`
	Y int `json:"y"`
	Bitmap
}

// Frame is a composited bitmap tagged with the request that produced it.
type Frame struct {
	Seq    uint64    `json:"seq"`
	At     time.Time `json:"at"`
	Bitmap Bitmap    `json:"bitmap"`
}
