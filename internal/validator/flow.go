// Package validator analyses the screen flow of an interaction config against
// its layer tree: which screens and popups lead where, which screens can never
// be reached and which targets point nowhere. Nothing it reports stops a
// config from loading; the runtime ignores unresolved references.
package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/aretw0/psdrun/pkg/visibility"
)

// AnySource is the source of edges from elements outside every screen and
// popup; they can fire on any screen.
const AnySource = "*"

// EdgeKind classifies a flow edge.
type EdgeKind string

const (
	EdgeNavigate    EdgeKind = "navigate"
	EdgeConditional EdgeKind = "conditional"
	EdgePopup       EdgeKind = "popup"
	EdgeTimer       EdgeKind = "timer"
)

// NodeKind tells screens from popups.
type NodeKind string

const (
	NodeScreen NodeKind = "screen"
	NodePopup  NodeKind = "popup"
)

// Node is a screen or popup of the flow.
type Node struct {
	Name string
	Kind NodeKind
}

// ID returns a name unique across screens and popups.
func (n Node) ID() string {
	if n.Kind == NodePopup {
		return "popup:" + n.Name
	}
	return n.Name
}

// Edge is one way to get from a screen or popup to another.
type Edge struct {
	From    Node
	To      Node
	Kind    EdgeKind
	LayerID int
	Label   string
}

// Flow is the navigation graph of a config.
type Flow struct {
	Initial string
	Nodes   []Node
	Edges   []Edge
}

// BuildFlow derives the flow graph. Each element is attributed to the nearest
// enclosing screen or popup group; elements outside all of them get AnySource.
func BuildFlow(cfg *domain.InteractionConfig, tree *layertree.Tree) *Flow {
	f := &Flow{Initial: cfg.InitialScreen}
	owners := map[int]Node{}
	for _, s := range cfg.Screens {
		f.Nodes = append(f.Nodes, Node{Name: s, Kind: NodeScreen})
	}
	for _, el := range cfg.Elements {
		switch el.Type {
		case domain.ElementScreen:
			owners[el.LayerID] = Node{Name: el.Name, Kind: NodeScreen}
		case domain.ElementPopup:
			n := Node{Name: el.Name, Kind: NodePopup}
			owners[el.LayerID] = n
			f.Nodes = append(f.Nodes, n)
		}
	}

	layers := tree.Layers()
	ownerOf := func(layerID int) Node {
		g, ok := visibility.EnclosingGroup(layers, layerID, func(id int) bool { _, ok := owners[id]; return ok })
		if !ok {
			return Node{Name: AnySource, Kind: NodeScreen}
		}
		return owners[g]
	}

	screen := func(name string) Node { return Node{Name: name, Kind: NodeScreen} }
	for _, el := range cfg.Elements {
		action := el.Action
		if action == "" && el.Type == domain.ElementConditional {
			action = domain.ActionNavigateConditional
		}

		if el.Type == domain.ElementTimer {
			for _, on := range el.TriggerOn {
				f.Edges = append(f.Edges, Edge{
					From: screen(on), To: screen(el.Target), Kind: EdgeTimer,
					LayerID: el.LayerID, Label: fmt.Sprintf("%gs", el.Delay),
				})
			}
			continue
		}

		from := ownerOf(el.LayerID)
		switch action {
		case domain.ActionNavigate:
			f.Edges = append(f.Edges, Edge{From: from, To: screen(el.Target), Kind: EdgeNavigate, LayerID: el.LayerID})
		case domain.ActionNavigateFromPopup, domain.ActionHidePopup:
			if el.Target != "" {
				f.Edges = append(f.Edges, Edge{From: from, To: screen(el.Target), Kind: EdgeNavigate, LayerID: el.LayerID})
			}
		case domain.ActionShowPopup:
			f.Edges = append(f.Edges, Edge{From: from, To: Node{Name: el.Target, Kind: NodePopup}, Kind: EdgePopup, LayerID: el.LayerID})
		case domain.ActionNavigateConditional:
			for _, on := range sortedKeys(el.Targets) {
				f.Edges = append(f.Edges, Edge{
					From: screen(on), To: screen(el.Targets[on]), Kind: EdgeConditional,
					LayerID: el.LayerID, Label: fmt.Sprintf("#%d", el.LayerID),
				})
			}
		}
	}
	return f
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Report lists what Check found.
type Report struct {
	// Unreachable screens cannot be entered from the initial screen.
	Unreachable []string
	// Dangling edges target a screen or popup the config never declares.
	Dangling []Edge
	// Missing element layers are absent from the document.
	Missing []int
}

// OK reports whether nothing was found.
func (r Report) OK() bool {
	return len(r.Unreachable) == 0 && len(r.Dangling) == 0 && len(r.Missing) == 0
}

// Warnings formats the report one finding per line.
func (r Report) Warnings() []string {
	var out []string
	for _, s := range r.Unreachable {
		out = append(out, fmt.Sprintf("screen %q is unreachable from the initial screen", s))
	}
	for _, e := range r.Dangling {
		out = append(out, fmt.Sprintf("layer %d: %s target %q is not declared", e.LayerID, e.To.Kind, e.To.Name))
	}
	for _, id := range r.Missing {
		out = append(out, fmt.Sprintf("layer %d is not in the document", id))
	}
	return out
}

// String joins Warnings.
func (r Report) String() string { return strings.Join(r.Warnings(), "\n") }

// Check crawls the flow from the initial screen.
func Check(cfg *domain.InteractionConfig, tree *layertree.Tree) Report {
	var r Report
	for _, el := range cfg.Elements {
		if el.Type == domain.ElementTimer {
			continue
		}
		if _, ok := tree.Layer(el.LayerID); !ok {
			r.Missing = append(r.Missing, el.LayerID)
		}
	}

	f := BuildFlow(cfg, tree)
	declared := map[string]bool{}
	for _, n := range f.Nodes {
		declared[n.ID()] = true
	}
	for _, e := range f.Edges {
		if !declared[e.To.ID()] {
			r.Dangling = append(r.Dangling, e)
		}
	}

	visited := map[string]bool{}
	queue := []string{Node{Name: f.Initial, Kind: NodeScreen}.ID()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, e := range f.Edges {
			from := e.From.ID()
			if (from == current || from == AnySource) && !visited[e.To.ID()] {
				queue = append(queue, e.To.ID())
			}
		}
	}
	for _, s := range cfg.Screens {
		if !visited[s] {
			r.Unreachable = append(r.Unreachable, s)
		}
	}
	return r
}
