package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDump = `{
  "handle": 1, "width": 320, "height": 240,
  "layers": [
    {"id": 10, "index": 0, "name": "Home", "x": 0, "y": 0, "width": 0, "height": 0,
     "visible": true, "opacity": 255, "blendMode": "passThrough", "itemType": "folder", "type": "group"},
    {"id": 11, "index": 0, "name": "title", "x": 4, "y": 5, "width": 60, "height": 12,
     "visible": false, "opacity": 128, "blendMode": "multiply", "itemType": "text", "text": "Hello", "type": "layer"},
    {"id": 10, "type": "groupEnd", "name": ""},
    {"id": 12, "name": "bg", "x": 0, "y": 0, "width": 320, "height": 240, "blendMode": "weird", "itemType": "smartObject"}
  ]
}`

const yamlDump = `
width: 100
height: 50
layers:
  - {id: 1, name: screen, type: group}
  - {id: 2, name: label, x: 1, y: 2, width: 3, height: 4, itemType: text, text: "--", opacity: 400}
  - {id: 1, type: groupEnd}
`

func TestParser_JSON(t *testing.T) {
	doc, err := file.NewParser().Parse(context.Background(), []byte(jsonDump))
	require.NoError(t, err)

	assert.Equal(t, 320, doc.Width)
	require.Len(t, doc.Layers, 4)

	group := doc.Layers[0]
	assert.Equal(t, domain.KindGroup, group.Kind)
	assert.Equal(t, domain.BlendPassThrough, group.BlendMode)

	title := doc.Layers[1]
	assert.False(t, title.Visible)
	assert.Equal(t, uint8(128), title.Opacity)
	assert.Equal(t, domain.BlendMultiply, title.BlendMode)
	assert.Equal(t, domain.Rect{X: 4, Y: 5, W: 60, H: 12}, title.Rect)
	assert.True(t, title.IsText())
	assert.Equal(t, "Hello", title.Text)

	assert.Equal(t, domain.KindGroupEnd, doc.Layers[2].Kind)
	assert.Equal(t, 10, doc.Layers[2].ID)

	bg := doc.Layers[3]
	assert.Equal(t, domain.KindLayer, bg.Kind, "missing type means a plain layer")
	assert.True(t, bg.Visible, "missing visible means visible")
	assert.Equal(t, uint8(255), bg.Opacity)
	assert.Equal(t, domain.BlendNormal, bg.BlendMode)
	assert.Equal(t, domain.ItemUnknown, bg.ItemType)
}

func TestParser_YAML(t *testing.T) {
	doc, err := file.NewParser().Parse(context.Background(), []byte(yamlDump))
	require.NoError(t, err)

	require.Len(t, doc.Layers, 3)
	assert.Equal(t, domain.ItemFolder, doc.Layers[0].ItemType)
	assert.Equal(t, uint8(255), doc.Layers[1].Opacity, "opacity is clamped")
	assert.Equal(t, "--", doc.Layers[1].Text)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", "  "},
		{"bad json", `{"layers": [`},
		{"parser error", `{"error": "Failed to open file"}`},
		{"bad type", `{"layers": [{"id": 1, "type": "mask"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := file.NewParser().Parse(context.Background(), []byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDump), 0o644))

	doc, err := file.NewParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 100, doc.Width)

	_, err = file.NewParser().ParseFile(context.Background(), path+".missing")
	assert.Error(t, err)
}
