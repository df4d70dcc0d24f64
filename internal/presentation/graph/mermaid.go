package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/psdrun/internal/validator"
)

// GraphOverlay contains session state to highlight on the graph.
type GraphOverlay struct {
	CurrentScreen string
	ActivePopups  []string
	Unreachable   []string
}

// GenerateMermaid produces a Mermaid flowchart of a screen flow.
// Shapes:
// - Initial screen: ((Circle))
// - Popup: [[Subroutine]]
// - Any screen (global elements): {{Hexagon}}
// - Screen: [Rectangle]
func GenerateMermaid(flow *validator.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		opener, closer := "[", "]"
		switch {
		case node.Kind == validator.NodePopup:
			opener, closer = "[[", "]]"
		case node.Name == flow.Initial:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(node), opener, escape(node.Name), closer)
	}

	declared := make(map[string]bool, len(flow.Nodes))
	for _, n := range flow.Nodes {
		declared[n.ID()] = true
	}
	anyDrawn := false
	for _, e := range flow.Edges {
		if e.From.Name == validator.AnySource && !anyDrawn {
			sb.WriteString("    any{{\"any screen\"}}\n")
			anyDrawn = true
		}
		if !declared[e.To.ID()] {
			// Dangling targets still get a node so the edge is visible.
			declared[e.To.ID()] = true
			fmt.Fprintf(&sb, "    %s[\"%s ?\"]\n", nodeID(e.To), escape(e.To.Name))
		}
	}

	for _, e := range flow.Edges {
		var arrow string
		switch e.Kind {
		case validator.EdgePopup:
			arrow = "-.->"
		case validator.EdgeTimer:
			arrow = fmt.Sprintf("-- \"⏱️ %s\" -->", escape(e.Label))
		case validator.EdgeConditional:
			arrow = fmt.Sprintf("-. \"%s\" .->", escape(e.Label))
		default:
			arrow = "-->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.From), arrow, nodeID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef popup fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef unreachable fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#616161;\n")
		for _, s := range overlay.Unreachable {
			fmt.Fprintf(&sb, "    class %s unreachable;\n", sanitizeMermaidID(s))
		}
		for _, p := range overlay.ActivePopups {
			fmt.Fprintf(&sb, "    class %s popup;\n", nodeID(validator.Node{Name: p, Kind: validator.NodePopup}))
		}
		if overlay.CurrentScreen != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentScreen))
		}
	}

	return sb.String()
}

func nodeID(n validator.Node) string {
	switch {
	case n.Name == validator.AnySource:
		return "any"
	case n.Kind == validator.NodePopup:
		return "popup_" + sanitizeMermaidID(n.Name)
	}
	return sanitizeMermaidID(n.Name)
}

func escape(s string) string { return strings.ReplaceAll(s, "\"", "'") }

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, id)
}
