package domain

// Snapshot is a point-in-time copy of a session's runtime state.
// Maps are owned by the snapshot and safe to retain.
type Snapshot struct {
	SessionID          string            `json:"session_id"`
	Configured         bool              `json:"configured"`
	CurrentScreen      string            `json:"current_screen,omitempty"`
	ActivePopups       []string          `json:"active_popups"`
	SelectedHighlights map[string]string `json:"selected_highlights"`
	DynamicTexts       map[int]string    `json:"dynamic_texts"`
	SliderValues       map[int]float64   `json:"slider_values"`
	Overrides          map[int]bool      `json:"overrides"`
	ClocksRunning      bool              `json:"clocks_running"`
	PendingTimers      int               `json:"pending_timers"`
}

// NewSnapshot returns a snapshot with every map allocated.
func NewSnapshot(sessionID string) *Snapshot {
	return &Snapshot{
		SessionID:          sessionID,
		ActivePopups:       []string{},
		SelectedHighlights: map[string]string{},
		DynamicTexts:       map[int]string{},
		SliderValues:       map[int]float64{},
		Overrides:          map[int]bool{},
	}
}
