package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventScreenEnter  EventType = "screen_enter"
	EventScreenLeave  EventType = "screen_leave"
	EventAction       EventType = "action"
	EventTimerFired   EventType = "timer_fired"
	EventConfigLoaded EventType = "config_loaded"
	EventFrame        EventType = "frame"
	EventRenderError  EventType = "render_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// ScreenEvent represents entry into or exit from a screen.
type ScreenEvent struct {
	EventBase
	Screen string `json:"screen"`
}

// ActionEvent represents one dispatched action. Applied is false when the
// action resolved to nothing and was skipped.
type ActionEvent struct {
	EventBase
	Action  ActionType `json:"action"`
	Target  string     `json:"target,omitempty"`
	Applied bool       `json:"applied"`
}

// TimerEvent represents a screen timer that fired while still armed.
type TimerEvent struct {
	EventBase
	Screen string        `json:"screen"`
	Target string        `json:"target,omitempty"`
	Delay  time.Duration `json:"delay"`
}

// ConfigEvent is emitted after a configuration is accepted.
type ConfigEvent struct {
	EventBase
	Screens       int    `json:"screens"`
	Elements      int    `json:"elements"`
	InitialScreen string `json:"initial_screen"`
}

// RenderEvent reports the outcome of one render request.
type RenderEvent struct {
	EventBase
	Seq      uint64        `json:"seq"`
	Stale    bool          `json:"stale,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for runtime observability.
type LifecycleHooks struct {
	OnScreenEnter func(context.Context, *ScreenEvent)
	OnScreenLeave func(context.Context, *ScreenEvent)
	OnAction      func(context.Context, *ActionEvent)
	OnTimerFired  func(context.Context, *TimerEvent)
	OnConfig      func(context.Context, *ConfigEvent)
	OnFrame       func(context.Context, *RenderEvent)
	OnRenderError func(context.Context, *RenderEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnScreenEnter: chain(h.OnScreenEnter, other.OnScreenEnter),
		OnScreenLeave: chain(h.OnScreenLeave, other.OnScreenLeave),
		OnAction:      chain(h.OnAction, other.OnAction),
		OnTimerFired:  chain(h.OnTimerFired, other.OnTimerFired),
		OnConfig:      chain(h.OnConfig, other.OnConfig),
		OnFrame:       chain(h.OnFrame, other.OnFrame),
		OnRenderError: chain(h.OnRenderError, other.OnRenderError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
