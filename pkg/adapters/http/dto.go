package http

import (
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
)

// CreateSessionRequest opens a session. Exactly one of Document and Dump is
// needed: Document is the parsed layer sequence, Dump the raw layer dump
// (JSON or YAML) handed to the server's document parser.
type CreateSessionRequest struct {
	ID       string           `json:"id,omitempty" validate:"omitempty,max=128,excludesall=/?#"`
	DocKey   string           `json:"doc_key,omitempty" validate:"omitempty,max=256"`
	Document *domain.Document `json:"document,omitempty" validate:"required_without=Dump"`
	Dump     string           `json:"dump,omitempty" validate:"required_without=Document"`
	Config   string           `json:"config,omitempty" validate:"required_if=Resume true"`
	Resume   bool             `json:"resume,omitempty"`
}

// ConfigRequest carries a model reply or a bare JSON config.
type ConfigRequest struct {
	Text string `json:"text" validate:"required"`
}

// Point is a document coordinate.
type Point struct {
	X int `json:"x" validate:"min=0"`
	Y int `json:"y" validate:"min=0"`
}

// ClickRequest clicks a layer directly or hit-tests a point.
type ClickRequest struct {
	LayerID *int   `json:"layerId,omitempty" validate:"required_without=At"`
	At      *Point `json:"at,omitempty" validate:"required_without=LayerID"`
}

// OverrideRequest toggles one layer.
type OverrideRequest struct {
	LayerID *int  `json:"layerId" validate:"required"`
	Visible *bool `json:"visible" validate:"required"`
}

// SessionResponse describes an open session.
type SessionResponse struct {
	ID       string           `json:"id"`
	DocKey   string           `json:"doc_key"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Layers   int              `json:"layers"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// ActionResponse reports the outcome of an action and the resulting state.
type ActionResponse struct {
	Applied  bool             `json:"applied"`
	LayerID  int              `json:"layerId,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// HintsResponse is returned after hints are stored.
type HintsResponse struct {
	Restored int `json:"restored"`
}

// IssueDTO is one problem found in a rejected config.
type IssueDTO struct {
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string     `json:"error"`
	Stage  string     `json:"stage,omitempty"`
	Issues []IssueDTO `json:"issues,omitempty"`
}

func issuesFrom(in []interaction.Issue) []IssueDTO {
	if len(in) == 0 {
		return nil
	}
	out := make([]IssueDTO, len(in))
	for i, is := range in {
		out[i] = IssueDTO{Key: is.Key, Reason: is.Reason}
	}
	return out
}
