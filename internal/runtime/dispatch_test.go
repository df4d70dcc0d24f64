package runtime

import (
	"context"
	"testing"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name       string
		action     domain.Action
		wantOK     bool
		wantErr    error
		wantScreen string
	}{
		{"navigate", domain.Action{Type: domain.ActionNavigate, Target: "pin"}, true, nil, "pin"},
		{"navigate unknown", domain.Action{Type: domain.ActionNavigate, Target: "zzz"}, false, nil, "home"},
		{"conditional", domain.Action{Type: domain.ActionNavigateConditional, Targets: map[string]string{"home": "pin"}}, true, nil, "pin"},
		{"conditional miss", domain.Action{Type: domain.ActionNavigateConditional, Targets: map[string]string{"pin": "home"}}, false, nil, "home"},
		{"show popup", domain.Action{Type: domain.ActionShowPopup, Target: "confirm"}, true, nil, "home"},
		{"digit", domain.Action{Type: domain.ActionInputDigit, Target: "code", Value: "5"}, true, nil, "home"},
		{"slider", domain.Action{Type: domain.ActionSetSlider, LayerID: 103, Number: 2}, true, nil, "home"},
		{"unknown", domain.Action{Type: "explode"}, false, domain.ErrUnknownAction, "home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newConfigured(t)
			ok, err := h.engine.Dispatch(context.Background(), tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantScreen, h.engine.CurrentScreen())
		})
	}
}

func TestDispatch_EmitsActionEvents(t *testing.T) {
	var events []*domain.ActionEvent
	h := newConfigured(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnAction: func(_ context.Context, ev *domain.ActionEvent) { events = append(events, ev) },
	}))
	ctx := context.Background()

	_, _ = h.engine.Dispatch(ctx, domain.Action{Type: domain.ActionNavigate, Target: "pin"})
	_, _ = h.engine.Dispatch(ctx, domain.Action{Type: domain.ActionShowPopup, Target: "nope"})

	require.Len(t, events, 2)
	assert.True(t, events[0].Applied)
	assert.Equal(t, domain.ActionNavigate, events[0].Action)
	assert.Equal(t, "test", events[0].SessionID)
	assert.False(t, events[1].Applied)
}

func TestScreenHooks(t *testing.T) {
	var seen []string
	record := func(prefix string) func(context.Context, *domain.ScreenEvent) {
		return func(_ context.Context, ev *domain.ScreenEvent) { seen = append(seen, prefix+ev.Screen) }
	}
	h := newConfigured(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnScreenEnter: record("+"),
		OnScreenLeave: record("-"),
	}))
	h.engine.Navigate(context.Background(), "pin")

	assert.Equal(t, []string{"+home", "-home", "+pin"}, seen)
}

func TestClick(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	ok, err := h.engine.Click(ctx, 201)
	require.NoError(t, err)
	assert.False(t, ok, "button on a hidden screen is not live")

	ok, err = h.engine.Click(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok, "displays have no action")

	ok, err = h.engine.Click(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.engine.Click(ctx, 101)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pin", h.engine.CurrentScreen())

	ok, err = h.engine.Click(ctx, 201)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "home", h.engine.CurrentScreen())

	ok, err = h.engine.Click(ctx, 102)
	require.NoError(t, err)
	assert.True(t, ok, "conditional elements imply navigate_conditional")
	assert.Equal(t, "pin", h.engine.CurrentScreen())
}

func TestClick_WithoutConfig(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.Click(context.Background(), 101)
	assert.ErrorIs(t, err, domain.ErrNoConfig)
}

func TestClick_HiddenByOverride(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	require.True(t, h.engine.SetOverride(ctx, 101, false))
	assert.False(t, h.engine.Live(101))
	ok, err := h.engine.Click(ctx, 101)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHitTest(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	id, ok := h.engine.HitTest(5, 5)
	require.True(t, ok)
	assert.Equal(t, 101, id)

	_, ok = h.engine.HitTest(150, 150)
	assert.False(t, ok, "hidden popup does not catch clicks")

	require.True(t, h.engine.ShowPopup(ctx, "confirm"))
	id, ok = h.engine.HitTest(150, 150)
	require.True(t, ok)
	assert.Equal(t, 40, id)

	id, ok = h.engine.HitTest(5, 5)
	require.True(t, ok)
	assert.Equal(t, 101, id, "earlier layers are on top")

	require.True(t, h.engine.Navigate(ctx, "pin"))
	id, ok = h.engine.HitTest(5, 5)
	require.True(t, ok)
	assert.Equal(t, 201, id)
}

func TestScreenOf(t *testing.T) {
	h := newConfigured(t)

	s, ok := h.engine.ScreenOf(9)
	require.True(t, ok)
	assert.Equal(t, "pin", s)

	_, ok = h.engine.ScreenOf(40)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	src := newConfigured(t)
	require.True(t, src.engine.Navigate(ctx, "pin"))
	require.True(t, src.engine.InputDigit(ctx, "7", "d1,d2"))
	require.True(t, src.engine.ShowHighlight(ctx, "tab2"))
	require.True(t, src.engine.SetSlider(103, 6))
	snap := src.engine.Snapshot()

	dst := newConfigured(t)
	require.NoError(t, dst.engine.Restore(ctx, snap))

	got := dst.engine.Snapshot()
	assert.Equal(t, "pin", got.CurrentScreen)
	assert.Equal(t, snap.SelectedHighlights, got.SelectedHighlights)
	assert.Equal(t, snap.DynamicTexts, got.DynamicTexts)
	assert.Equal(t, snap.SliderValues, got.SliderValues)
	assert.Equal(t, snap.Overrides, got.Overrides)
	assert.Equal(t, 1, got.PendingTimers)

	req := dst.last(t)
	assert.Equal(t, "restore", req.Reason)
	assert.Equal(t, "7", textsOf(req)[9])
}

func TestRestore_Rejects(t *testing.T) {
	ctx := context.Background()

	err := newHarness(t).engine.Restore(ctx, &domain.Snapshot{CurrentScreen: "home"})
	assert.ErrorIs(t, err, domain.ErrNoConfig)

	h := newConfigured(t)
	err = h.engine.Restore(ctx, &domain.Snapshot{CurrentScreen: "settings"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Equal(t, "home", h.engine.CurrentScreen())
}
