package domain

import "strconv"

// HintType selects how a layer is treated when the document is exported.
type HintType int

const (
	HintEmbed HintType = iota
	HintMerge
	HintCustom
	HintNative
	HintSkip
	HintNone
)

var hintNames = [...]string{"embed", "merge", "custom", "native", "skip", "none"}

func (h HintType) String() string {
	if h < 0 || int(h) >= len(hintNames) {
		return "embed"
	}
	return hintNames[h]
}

// HintFormatVersion is written under the "qtpsdparser.hint" key.
const HintFormatVersion = 1

// LayerHint is the per-layer export metadata kept across sessions.
type LayerHint struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type       HintType `json:"type" yaml:"type"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Native     int      `json:"native" yaml:"native"`
	Visible    bool     `json:"visible" yaml:"visible"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// DefaultHint is the hint of a layer nobody annotated.
func DefaultHint() LayerHint { return LayerHint{Type: HintEmbed, Visible: true} }

// IsDefault reports whether the hint carries no information beyond DefaultHint.
func (h LayerHint) IsDefault() bool {
	return h.ID == "" && h.Type == HintEmbed && h.Name == "" && h.Native == 0 &&
		h.Visible && len(h.Properties) == 0
}

// HintSet is the persisted hints document for one design file.
type HintSet struct {
	Version int                  `json:"qtpsdparser.hint"`
	Layers  map[string]LayerHint `json:"layers"`
}

// NewHintSet returns an empty set at the current format version.
func NewHintSet() *HintSet {
	return &HintSet{Version: HintFormatVersion, Layers: map[string]LayerHint{}}
}

// Get returns the hint stored for a layer, or DefaultHint.
func (s *HintSet) Get(layerID int) LayerHint {
	if s != nil {
		if h, ok := s.Layers[strconv.Itoa(layerID)]; ok {
			return h
		}
	}
	return DefaultHint()
}

// Set stores a hint, dropping the entry when it is the default.
func (s *HintSet) Set(layerID int, h LayerHint) {
	key := strconv.Itoa(layerID)
	if h.IsDefault() {
		delete(s.Layers, key)
		return
	}
	if s.Layers == nil {
		s.Layers = map[string]LayerHint{}
	}
	s.Layers[key] = h
}
