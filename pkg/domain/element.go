package domain

import (
	"encoding/json"
	"maps"
	"strings"
)

// ElementType tags an interaction element.
type ElementType string

const (
	ElementScreen      ElementType = "screen"
	ElementConditional ElementType = "conditional"
	ElementButton      ElementType = "button"
	ElementTapArea     ElementType = "tap_area"
	ElementInputDigit  ElementType = "input_digit"
	ElementClearInput  ElementType = "clear_input"
	ElementDisplay     ElementType = "display"
	ElementDynamicText ElementType = "dynamic_text"
	ElementClock       ElementType = "clock"
	ElementSlider      ElementType = "slider"
	ElementTimer       ElementType = "timer"
	ElementHighlight   ElementType = "highlight"
	ElementPopup       ElementType = "popup"
)

// Known reports whether the runtime interprets this element type.
func (t ElementType) Known() bool {
	switch t {
	case ElementScreen, ElementConditional, ElementButton, ElementTapArea,
		ElementInputDigit, ElementClearInput, ElementDisplay, ElementDynamicText,
		ElementClock, ElementSlider, ElementTimer, ElementHighlight, ElementPopup:
		return true
	}
	return false
}

// IsTextHolder reports whether elements of this type carry runtime text.
func (t ElementType) IsTextHolder() bool {
	return t == ElementDisplay || t == ElementDynamicText
}

// ActionType names what an element does when activated.
type ActionType string

const (
	ActionNavigate            ActionType = "navigate"
	ActionNavigateConditional ActionType = "navigate_conditional"
	ActionShowHighlight       ActionType = "show_highlight"
	ActionToggleHighlight     ActionType = "toggle_highlight"
	ActionShowPopup           ActionType = "show_popup"
	ActionHidePopup           ActionType = "hide_popup"
	ActionNavigateFromPopup   ActionType = "navigate_from_popup"
	ActionInputDigit          ActionType = "input_digit"
	ActionClearInput          ActionType = "clear_input"

	// ActionSetSlider is never authored in a config; hosts dispatch it for slider drags.
	ActionSetSlider ActionType = "set_slider"
)

// Element is one entry of an interaction configuration.
// Fields the runtime does not interpret are kept in Extra.
type Element struct {
	LayerID   int               `json:"layerId" mapstructure:"layerId"`
	Type      ElementType       `json:"type" mapstructure:"type"`
	Action    ActionType        `json:"action,omitempty" mapstructure:"action"`
	Target    string            `json:"target,omitempty" mapstructure:"target"`
	Targets   map[string]string `json:"targets,omitempty" mapstructure:"targets"`
	Min       *float64          `json:"min,omitempty" mapstructure:"min"`
	Max       *float64          `json:"max,omitempty" mapstructure:"max"`
	Format    string            `json:"format,omitempty" mapstructure:"format"`
	Name      string            `json:"name,omitempty" mapstructure:"name"`
	Value     string            `json:"value,omitempty" mapstructure:"value"`
	ShowOn    []string          `json:"showOn,omitempty" mapstructure:"showOn"`
	Group     string            `json:"group,omitempty" mapstructure:"group"`
	Delay     float64           `json:"delay,omitempty" mapstructure:"delay"`
	TriggerOn []string          `json:"triggerOn,omitempty" mapstructure:"triggerOn"`

	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// TargetList splits a comma separated Target into trimmed, non-empty names.
func (e Element) TargetList() []string {
	var out []string
	for _, part := range strings.Split(e.Target, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarshalJSON writes the known fields and merges Extra back in.
func (e Element) MarshalJSON() ([]byte, error) {
	type plain Element
	raw, err := json.Marshal(plain(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return raw, nil
	}
	merged := make(map[string]any, len(e.Extra)+8)
	maps.Copy(merged, e.Extra)
	var known map[string]any
	if err := json.Unmarshal(raw, &known); err != nil {
		return nil, err
	}
	maps.Copy(merged, known)
	return json.Marshal(merged)
}

// InteractionConfig describes the screens of a prototype and its interactive elements.
type InteractionConfig struct {
	Elements      []Element `json:"elements" mapstructure:"elements"`
	Screens       []string  `json:"screens" mapstructure:"screens"`
	InitialScreen string    `json:"initialScreen" mapstructure:"initialScreen"`
}

// HasScreen reports whether name is a declared screen.
func (c *InteractionConfig) HasScreen(name string) bool {
	for _, s := range c.Screens {
		if s == name {
			return true
		}
	}
	return false
}

// FindNamed returns the first element of type t with the given name.
func (c *InteractionConfig) FindNamed(t ElementType, name string) (Element, bool) {
	for _, el := range c.Elements {
		if el.Type == t && el.Name == name {
			return el, true
		}
	}
	return Element{}, false
}

// FindLayer returns the first element bound to layerID. Timers have no layer
// and are never returned.
func (c *InteractionConfig) FindLayer(layerID int) (Element, bool) {
	for _, el := range c.Elements {
		if el.LayerID == layerID && el.Type != ElementTimer {
			return el, true
		}
	}
	return Element{}, false
}
