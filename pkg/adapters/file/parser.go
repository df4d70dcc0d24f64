// Package file reads layer dumps from disk and persists snapshots and export
// hints as files.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/psdrun/pkg/domain"
	"gopkg.in/yaml.v3"
)

// dump mirrors the layer dump written by the document parser: canvas size
// and a flat pre-order layers array with groupEnd sentinels.
type dump struct {
	Width  int         `json:"width" yaml:"width"`
	Height int         `json:"height" yaml:"height"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
	Layers []dumpLayer `json:"layers" yaml:"layers"`
}

type dumpLayer struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
	Visible   *bool  `json:"visible" yaml:"visible"`
	Opacity   *int   `json:"opacity" yaml:"opacity"`
	BlendMode string `json:"blendMode" yaml:"blendMode"`
	ItemType  string `json:"itemType" yaml:"itemType"`
	Text      string `json:"text" yaml:"text"`
	Type      string `json:"type" yaml:"type"`
}

// Parser implements ports.DocumentParser for JSON and YAML layer dumps.
type Parser struct{}

// NewParser creates a dump parser.
func NewParser() *Parser { return &Parser{} }

// Parse decodes a dump. Input starting with '{' is read as JSON, anything
// else as YAML.
func (p *Parser) Parse(ctx context.Context, data []byte) (*domain.Document, error) {
	var d dump
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty layer dump")
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, fmt.Errorf("failed to decode json layer dump: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("failed to decode yaml layer dump: %w", err)
	}
	if d.Error != "" {
		return nil, fmt.Errorf("document parser reported: %s", d.Error)
	}

	doc := &domain.Document{Width: d.Width, Height: d.Height, Layers: make([]domain.LayerNode, 0, len(d.Layers))}
	for i, l := range d.Layers {
		n, err := l.node()
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		doc.Layers = append(doc.Layers, n)
	}
	return doc, nil
}

// ParseFile reads and parses a dump from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layer dump: %w", err)
	}
	return p.Parse(ctx, data)
}

func (l dumpLayer) node() (domain.LayerNode, error) {
	kind := domain.LayerKind(l.Type)
	switch kind {
	case "":
		kind = domain.KindLayer
	case domain.KindLayer, domain.KindGroup, domain.KindGroupEnd:
	default:
		return domain.LayerNode{}, fmt.Errorf("unknown layer type %q", l.Type)
	}
	if kind == domain.KindGroupEnd {
		return domain.LayerNode{ID: l.ID, Kind: kind}, nil
	}

	n := domain.LayerNode{
		ID:        l.ID,
		Name:      l.Name,
		Rect:      domain.Rect{X: l.X, Y: l.Y, W: l.Width, H: l.Height},
		Visible:   l.Visible == nil || *l.Visible,
		Opacity:   255,
		BlendMode: domain.ParseBlendMode(l.BlendMode),
		Kind:      kind,
		ItemType:  itemType(l.ItemType, kind),
		Text:      l.Text,
	}
	if l.Opacity != nil {
		n.Opacity = uint8(min(max(*l.Opacity, 0), 255))
	}
	return n, nil
}

func itemType(s string, kind domain.LayerKind) domain.ItemType {
	switch t := domain.ItemType(s); t {
	case domain.ItemText, domain.ItemShape, domain.ItemImage, domain.ItemFolder:
		return t
	case "":
		if kind == domain.KindGroup {
			return domain.ItemFolder
		}
	}
	return domain.ItemUnknown
}
