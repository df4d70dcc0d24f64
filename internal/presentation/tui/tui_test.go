package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")

	out := buf.String()
	assert.Contains(t, out, "v0.1.0")
	assert.Contains(t, out, "|_|")
	assert.NotContains(t, out, "\x1b[", "a plain writer gets no escape codes")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)

	out, err := render("## Screen: home\n\n- **Popups:** none")
	require.NoError(t, err)
	assert.Contains(t, out, "Screen: home")
	assert.Contains(t, out, "Popups:")
}
