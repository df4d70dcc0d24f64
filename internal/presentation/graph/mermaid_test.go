package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/psdrun/internal/presentation/graph"
	"github.com/aretw0/psdrun/internal/validator"
	"github.com/stretchr/testify/assert"
)

func screen(name string) validator.Node { return validator.Node{Name: name, Kind: validator.NodeScreen} }

func popup(name string) validator.Node { return validator.Node{Name: name, Kind: validator.NodePopup} }

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		flow     *validator.Flow
		contains []string
	}{
		{
			name: "Node Shapes",
			flow: &validator.Flow{
				Initial: "home",
				Nodes:   []validator.Node{screen("home"), screen("menu"), popup("confirm")},
			},
			contains: []string{
				`home(("home"))`,
				`menu["menu"]`,
				`popup_confirm[["confirm"]]`,
			},
		},
		{
			name: "ID Sanitization",
			flow: &validator.Flow{Nodes: []validator.Node{screen("step-1 a.b")}},
			contains: []string{
				`step_1_a_b["step-1 a.b"]`,
			},
		},
		{
			name: "Edge Kinds",
			flow: &validator.Flow{
				Initial: "home",
				Nodes:   []validator.Node{screen("home"), screen("menu"), popup("confirm")},
				Edges: []validator.Edge{
					{From: screen("home"), To: screen("menu"), Kind: validator.EdgeNavigate},
					{From: screen("home"), To: popup("confirm"), Kind: validator.EdgePopup},
					{From: screen("menu"), To: screen("home"), Kind: validator.EdgeConditional, Label: "#21"},
					{From: screen("menu"), To: screen("home"), Kind: validator.EdgeTimer, Label: "2s"},
					{From: popup("confirm"), To: screen("menu"), Kind: validator.EdgeNavigate},
				},
			},
			contains: []string{
				"home --> menu",
				"home -.-> popup_confirm",
				`menu -. "#21" .-> home`,
				`menu -- "⏱️ 2s" --> home`,
				"popup_confirm --> menu",
			},
		},
		{
			name: "Global And Dangling",
			flow: &validator.Flow{
				Nodes: []validator.Node{screen("home")},
				Edges: []validator.Edge{
					{From: screen(validator.AnySource), To: screen("gone"), Kind: validator.EdgeNavigate},
				},
			},
			contains: []string{
				`any{{"any screen"}}`,
				`gone["gone ?"]`,
				"any --> gone",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.flow, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	flow := &validator.Flow{
		Initial: "home",
		Nodes:   []validator.Node{screen("home"), screen("old-menu"), popup("confirm")},
	}
	got := graph.GenerateMermaid(flow, &graph.GraphOverlay{
		CurrentScreen: "home",
		ActivePopups:  []string{"confirm"},
		Unreachable:   []string{"old-menu"},
	})

	assert.Contains(t, got, "classDef current")
	assert.Contains(t, got, "class home current;")
	assert.Contains(t, got, "class popup_confirm popup;")
	assert.Contains(t, got, "class old_menu unreachable;")
}
