package domain

import "slices"

// StateDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Configured    *bool     `json:"configured,omitempty"`
	CurrentScreen *string   `json:"current_screen,omitempty"`
	ActivePopups  *[]string `json:"active_popups,omitempty"`

	// Map deltas contain only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Highlights map[string]any `json:"selected_highlights,omitempty"`
	Texts      map[int]any    `json:"dynamic_texts,omitempty"`
	Sliders    map[int]any    `json:"slider_values,omitempty"`
	Overrides  map[int]any    `json:"overrides,omitempty"`

	ClocksRunning *bool `json:"clocks_running,omitempty"`
	PendingTimers *int  `json:"pending_timers,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *Snapshot) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == nil {
		return fullDiff(newState)
	}

	diff := &StateDiff{SessionID: newState.SessionID}
	if oldState.Configured != newState.Configured {
		diff.Configured = &newState.Configured
	}
	if oldState.CurrentScreen != newState.CurrentScreen {
		diff.CurrentScreen = &newState.CurrentScreen
	}
	if !slices.Equal(oldState.ActivePopups, newState.ActivePopups) {
		popups := slices.Clone(newState.ActivePopups)
		diff.ActivePopups = &popups
	}
	diff.Highlights = diffMap(oldState.SelectedHighlights, newState.SelectedHighlights)
	diff.Texts = diffMap(oldState.DynamicTexts, newState.DynamicTexts)
	diff.Sliders = diffMap(oldState.SliderValues, newState.SliderValues)
	diff.Overrides = diffMap(oldState.Overrides, newState.Overrides)
	if oldState.ClocksRunning != newState.ClocksRunning {
		diff.ClocksRunning = &newState.ClocksRunning
	}
	if oldState.PendingTimers != newState.PendingTimers {
		diff.PendingTimers = &newState.PendingTimers
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func fullDiff(s *Snapshot) *StateDiff {
	popups := slices.Clone(s.ActivePopups)
	return &StateDiff{
		SessionID:     s.SessionID,
		Configured:    &s.Configured,
		CurrentScreen: &s.CurrentScreen,
		ActivePopups:  &popups,
		Highlights:    diffMap(nil, s.SelectedHighlights),
		Texts:         diffMap(nil, s.DynamicTexts),
		Sliders:       diffMap(nil, s.SliderValues),
		Overrides:     diffMap(nil, s.Overrides),
		ClocksRunning: &s.ClocksRunning,
		PendingTimers: &s.PendingTimers,
	}
}

func diffMap[K comparable, V comparable](old, new map[K]V) map[K]any {
	delta := make(map[K]any)
	for k, newVal := range new {
		if oldVal, exists := old[k]; !exists || oldVal != newVal {
			delta[k] = newVal
		}
	}
	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}
	// Return nil if delta is empty so omitempty can remove the key
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Configured == nil &&
		d.CurrentScreen == nil &&
		d.ActivePopups == nil &&
		len(d.Highlights) == 0 &&
		len(d.Texts) == 0 &&
		len(d.Sliders) == 0 &&
		len(d.Overrides) == 0 &&
		d.ClocksRunning == nil &&
		d.PendingTimers == nil
}
