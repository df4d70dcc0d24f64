package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestElementTargetList(t *testing.T) {
	el := Element{Target: " d1, d2 ,,d3"}
	want := []string{"d1", "d2", "d3"}
	if got := el.TargetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("TargetList() = %v, want %v", got, want)
	}
	if got := (Element{}).TargetList(); got != nil {
		t.Errorf("TargetList() on empty = %v, want nil", got)
	}
}

func TestElementMarshalKeepsExtra(t *testing.T) {
	el := Element{
		LayerID: 5,
		Type:    ElementButton,
		Action:  ActionNavigate,
		Target:  "home",
		Extra:   map[string]any{"haptic": "light", "target": "ignored"},
	}
	raw, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["haptic"] != "light" {
		t.Errorf("extra field lost: %s", raw)
	}
	if got["target"] != "home" {
		t.Errorf("known field must win over extra, got %v", got["target"])
	}
}

func TestConfigLookups(t *testing.T) {
	cfg := &InteractionConfig{
		Screens: []string{"a", "b"},
		Elements: []Element{
			{LayerID: 0, Type: ElementTimer, Target: "b"},
			{LayerID: 10, Type: ElementScreen, Name: "a"},
			{LayerID: 0, Type: ElementButton, Target: "b"},
		},
	}
	if !cfg.HasScreen("b") || cfg.HasScreen("c") {
		t.Error("HasScreen mismatch")
	}
	if el, ok := cfg.FindNamed(ElementScreen, "a"); !ok || el.LayerID != 10 {
		t.Errorf("FindNamed = %+v, %v", el, ok)
	}
	if el, ok := cfg.FindLayer(0); !ok || el.Type != ElementButton {
		t.Errorf("FindLayer(0) should skip timers, got %+v", el)
	}
	if !ElementPopup.Known() || ElementType("carousel").Known() {
		t.Error("Known mismatch")
	}
}
