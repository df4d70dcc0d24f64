package domain

// Action is a request to the interaction runtime, either authored on an
// element or dispatched directly by a host.
type Action struct {
	Type    ActionType        `json:"type" validate:"required"`
	Target  string            `json:"target,omitempty"`
	Targets map[string]string `json:"targets,omitempty"`
	Value   string            `json:"value,omitempty"`

	// LayerID and Number are only read by ActionSetSlider.
	LayerID int     `json:"layerId,omitempty"`
	Number  float64 `json:"number,omitempty"`
}

// ActionFor builds the action an element performs when activated.
func ActionFor(el Element) Action {
	return Action{
		Type:    el.Action,
		Target:  el.Target,
		Targets: el.Targets,
		Value:   el.Value,
		LayerID: el.LayerID,
	}
}
