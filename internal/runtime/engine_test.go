package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/psdrun/internal/testutils"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 2, 9, 5, 7, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func fixtureLayers() []domain.LayerNode {
	return []domain.LayerNode{
		testutils.Group(10, "Home"),
		testutils.Leaf(101, "go-pin", domain.Rect{X: 0, Y: 0, W: 50, H: 20}),
		testutils.Text(7, "code", "--", domain.Rect{X: 0, Y: 30, W: 40, H: 20}),
		testutils.Leaf(30, "tab1-on", domain.Rect{X: 0, Y: 60, W: 20, H: 10}),
		testutils.Leaf(31, "tab2-on", domain.Rect{X: 20, Y: 60, W: 20, H: 10}),
		testutils.Leaf(102, "maybe", domain.Rect{X: 60, Y: 0, W: 10, H: 10}),
		testutils.Leaf(103, "volume", domain.Rect{X: 60, Y: 20, W: 30, H: 5}),
		testutils.End(10),
		testutils.Group(20, "Pin"),
		testutils.Leaf(201, "back", domain.Rect{X: 0, Y: 0, W: 50, H: 20}),
		testutils.Text(8, "d1", "-", domain.Rect{X: 0, Y: 30, W: 10, H: 20}),
		testutils.Text(9, "d2", "-", domain.Rect{X: 10, Y: 30, W: 10, H: 20}),
		testutils.End(20),
		testutils.Leaf(40, "confirm", domain.Rect{X: 0, Y: 0, W: 200, H: 200}),
		testutils.Text(50, "clock", "00:00", domain.Rect{X: 150, Y: 0, W: 40, H: 10}),
		testutils.Text(60, "status", "", domain.Rect{X: 100, Y: 0, W: 40, H: 10}),
	}
}

func fixtureConfig() *domain.InteractionConfig {
	return &domain.InteractionConfig{
		Screens:       []string{"home", "pin"},
		InitialScreen: "home",
		Elements: []domain.Element{
			{LayerID: 10, Type: domain.ElementScreen, Name: "home"},
			{LayerID: 20, Type: domain.ElementScreen, Name: "pin"},
			{LayerID: 101, Type: domain.ElementButton, Action: domain.ActionNavigate, Target: "pin"},
			{LayerID: 7, Type: domain.ElementDisplay, Name: "code", Value: "--"},
			{LayerID: 30, Type: domain.ElementHighlight, Name: "tab1", Group: "tabs"},
			{LayerID: 31, Type: domain.ElementHighlight, Name: "tab2", Group: "tabs"},
			{LayerID: 102, Type: domain.ElementConditional, Targets: map[string]string{"home": "pin"}},
			{LayerID: 103, Type: domain.ElementSlider, Min: fptr(0), Max: fptr(10)},
			{LayerID: 201, Type: domain.ElementButton, Action: domain.ActionNavigate, Target: "home"},
			{LayerID: 8, Type: domain.ElementDisplay, Name: "d1", Value: "-"},
			{LayerID: 9, Type: domain.ElementDisplay, Name: "d2", Value: "-"},
			{LayerID: 40, Type: domain.ElementPopup, Name: "confirm"},
			{LayerID: 50, Type: domain.ElementClock, Format: "HH:mm:ss"},
			{LayerID: 60, Type: domain.ElementDynamicText, Name: "status", ShowOn: []string{"home"}},
			{LayerID: 0, Type: domain.ElementTimer, TriggerOn: []string{"pin"}, Delay: 3, Action: domain.ActionNavigate, Target: "home"},
		},
	}
}

type harness struct {
	engine *Engine
	sink   *testutils.RecordingSink
	sched  *testutils.ManualScheduler
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		sink:  &testutils.RecordingSink{},
		sched: testutils.NewManualScheduler(start),
	}
	opts = append([]Option{WithRenderSink(h.sink), WithScheduler(h.sched), WithSessionID("test")}, opts...)
	h.engine = NewEngine(testutils.MustTree(t, fixtureLayers()...), opts...)
	return h
}

func newConfigured(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := newHarness(t, opts...)
	require.NoError(t, h.engine.SetConfig(context.Background(), fixtureConfig()))
	return h
}

func (h *harness) last(t *testing.T) domain.RenderRequest {
	t.Helper()
	req, ok := h.sink.Last()
	require.True(t, ok, "expected a render request")
	return req
}

func textsOf(req domain.RenderRequest) map[int]string {
	out := map[int]string{}
	for _, u := range req.Texts {
		out[u.LayerID] = u.Text
	}
	return out
}

func TestSetConfig_InitialScreen(t *testing.T) {
	h := newConfigured(t)
	e := h.engine

	assert.Equal(t, "home", e.CurrentScreen())
	require.Equal(t, 1, h.sink.Len(), "config load renders exactly once")

	req := h.last(t)
	assert.Equal(t, "config", req.Reason)
	assert.Equal(t, map[int]bool{
		10: true, 20: false,
		30: false, 31: false,
		40: false,
		60: true,
	}, req.Batch)
	assert.Equal(t, map[int]string{7: "--", 8: "-", 9: "-", 50: "09:05:07"}, textsOf(req))

	snap := e.Snapshot()
	assert.True(t, snap.Configured)
	assert.Equal(t, "test", snap.SessionID)
	assert.True(t, snap.ClocksRunning)
	assert.InDelta(t, 0, snap.SliderValues[103], 1e-9)
}

func TestSetConfig_RejectedKeepsPrevious(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	bad := fixtureConfig()
	bad.InitialScreen = "nowhere"
	err := h.engine.SetConfig(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	var ce *interaction.ConfigError
	assert.ErrorAs(t, err, &ce)

	assert.Equal(t, "home", h.engine.CurrentScreen())
	assert.Equal(t, "home", h.engine.Config().InitialScreen)
	assert.Equal(t, 1, h.sink.Len(), "a rejected config renders nothing")
	assert.True(t, h.engine.Snapshot().ClocksRunning)
}

func TestNavigate_ScreenExclusivity(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	require.True(t, h.engine.Navigate(ctx, "pin"))
	req := h.last(t)
	assert.Equal(t, false, req.Batch[10])
	assert.Equal(t, true, req.Batch[20])
	assert.Equal(t, false, req.Batch[60], "showOn element hidden off its screens")
	assert.Equal(t, false, req.Overrides[10])
	assert.Equal(t, true, req.Overrides[20])
}

func TestNavigate_UndeclaredScreenIsIgnored(t *testing.T) {
	h := newConfigured(t)
	n := h.sink.Len()
	assert.False(t, h.engine.Navigate(context.Background(), "settings"))
	assert.Equal(t, "home", h.engine.CurrentScreen())
	assert.Equal(t, n, h.sink.Len())
}

func TestNavigate_KeepsHighlightsClearsPopups(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	require.True(t, h.engine.ShowHighlight(ctx, "tab2"))
	require.True(t, h.engine.ShowPopup(ctx, "confirm"))
	require.True(t, h.engine.Navigate(ctx, "pin"))

	req := h.last(t)
	assert.Equal(t, true, req.Batch[31])
	assert.Equal(t, false, req.Batch[30])
	assert.Equal(t, false, req.Batch[40])

	snap := h.engine.Snapshot()
	assert.Empty(t, snap.ActivePopups)
	assert.Equal(t, "tab2", snap.SelectedHighlights["tabs"])
}

func TestNavigateConditional(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()
	targets := map[string]string{"home": "pin"}

	assert.True(t, h.engine.NavigateConditional(ctx, targets))
	assert.Equal(t, "pin", h.engine.CurrentScreen())

	n := h.sink.Len()
	assert.False(t, h.engine.NavigateConditional(ctx, targets))
	assert.Equal(t, "pin", h.engine.CurrentScreen())
	assert.Equal(t, n, h.sink.Len())
}

func TestHighlights_AtMostOnePerGroup(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	steps := []struct {
		name      string
		toggle    bool
		target    string
		wantSel   string
		wantBatch map[int]bool
	}{
		{"show tab1", false, "tab1", "tab1", map[int]bool{30: true, 31: false}},
		{"show tab2", false, "tab2", "tab2", map[int]bool{30: false, 31: true}},
		{"toggle tab1 selects", true, "tab1", "tab1", map[int]bool{30: true, 31: false}},
		{"toggle tab1 clears", true, "tab1", "", map[int]bool{30: false, 31: false}},
		{"toggle tab2 selects", true, "tab2", "tab2", map[int]bool{30: false, 31: true}},
	}
	for _, st := range steps {
		var ok bool
		if st.toggle {
			ok = h.engine.ToggleHighlight(ctx, st.target)
		} else {
			ok = h.engine.ShowHighlight(ctx, st.target)
		}
		require.True(t, ok, st.name)

		req := h.last(t)
		assert.Equal(t, st.wantBatch, req.Batch, st.name)
		assert.Equal(t, st.wantSel, h.engine.Snapshot().SelectedHighlights["tabs"], st.name)

		shown := 0
		for _, id := range []int{30, 31} {
			if req.Overrides[id] {
				shown++
			}
		}
		assert.LessOrEqual(t, shown, 1, st.name)
	}

	assert.False(t, h.engine.ShowHighlight(ctx, "tab9"))
}

func TestPopups(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	require.True(t, h.engine.ShowPopup(ctx, "confirm"))
	assert.Equal(t, map[int]bool{40: true}, h.last(t).Batch, "only the delta is rendered")
	assert.Equal(t, []string{"confirm"}, h.engine.Snapshot().ActivePopups)

	assert.False(t, h.engine.ShowPopup(ctx, "missing"))

	require.True(t, h.engine.HidePopup(ctx, ""))
	req := h.last(t)
	assert.Equal(t, false, req.Batch[40])
	assert.Equal(t, true, req.Batch[10])
	assert.Equal(t, "home", h.engine.CurrentScreen())

	require.True(t, h.engine.ShowPopup(ctx, "confirm"))
	applied, err := h.engine.Dispatch(ctx, domain.Action{Type: domain.ActionNavigateFromPopup, Target: "pin"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "pin", h.engine.CurrentScreen())
	assert.Empty(t, h.engine.Snapshot().ActivePopups)
	assert.Equal(t, false, h.last(t).Overrides[40])
}

func TestInputDigit_SingleDisplay(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	steps := []struct {
		digit   string
		want    string
		applied bool
	}{
		{"1", "-1", true},
		{"2", "12", true},
		{"3", "12", false},
	}
	for _, st := range steps {
		before := h.sink.Len()
		assert.Equal(t, st.applied, h.engine.InputDigit(ctx, st.digit, "code"))
		assert.Equal(t, st.want, h.engine.Snapshot().DynamicTexts[7])
		if st.applied {
			require.Equal(t, before+1, h.sink.Len(), "one render per action")
			assert.Equal(t, map[int]string{7: st.want}, textsOf(h.last(t)))
		} else {
			assert.Equal(t, before, h.sink.Len())
		}
	}
}

func TestInputDigit_MultiDisplay(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	require.True(t, h.engine.InputDigit(ctx, "1", "d1,d2"))
	snap := h.engine.Snapshot()
	assert.Equal(t, "-", snap.DynamicTexts[8])
	assert.Equal(t, "1", snap.DynamicTexts[9])

	before := h.sink.Len()
	require.True(t, h.engine.InputDigit(ctx, "2", "d1, d2"))
	assert.Equal(t, before+1, h.sink.Len(), "both displays share one render")
	assert.Equal(t, map[int]string{8: "1", 9: "2"}, textsOf(h.last(t)))

	assert.False(t, h.engine.InputDigit(ctx, "3", "d1,d2"), "full displays do not shift")
	snap = h.engine.Snapshot()
	assert.Equal(t, "1", snap.DynamicTexts[8])
	assert.Equal(t, "2", snap.DynamicTexts[9])
}

func TestInputDigit_UnknownTargets(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()
	before := h.sink.Len()

	tests := []struct {
		name    string
		digit   string
		targets string
	}{
		{"unknown display", "1", "nope"},
		{"empty digit", "", "code"},
		{"two characters", "12", "code"},
		{"one unknown name among several", "1", "d1,missing"},
		{"unknown name in front", "1", "missing,d2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.engine.InputDigit(ctx, tt.digit, tt.targets))
		})
	}

	snap := h.engine.Snapshot()
	assert.Equal(t, "--", snap.DynamicTexts[7])
	assert.Equal(t, "-", snap.DynamicTexts[8], "a one character display never becomes a shift buffer")
	assert.Equal(t, "-", snap.DynamicTexts[9])
	assert.Equal(t, before, h.sink.Len())
}

func TestClearInput(t *testing.T) {
	h := newConfigured(t)
	ctx := context.Background()

	h.engine.InputDigit(ctx, "4", "code")
	h.engine.InputDigit(ctx, "4", "d1,d2")

	before := h.sink.Len()
	require.True(t, h.engine.ClearInput(ctx, "code,d1,d2"))
	assert.Equal(t, before+1, h.sink.Len())
	assert.Equal(t, map[int]string{7: "--", 8: "-", 9: "-"}, textsOf(h.last(t)))
}

func TestSetSlider(t *testing.T) {
	h := newConfigured(t)
	before := h.sink.Len()

	assert.True(t, h.engine.SetSlider(103, 4.5))
	assert.InDelta(t, 4.5, h.engine.Snapshot().SliderValues[103], 1e-9)
	assert.True(t, h.engine.SetSlider(103, 99))
	assert.InDelta(t, 10, h.engine.Snapshot().SliderValues[103], 1e-9)
	assert.True(t, h.engine.SetSlider(103, -3))
	assert.InDelta(t, 0, h.engine.Snapshot().SliderValues[103], 1e-9)

	assert.False(t, h.engine.SetSlider(101, 1), "buttons are not sliders")
	assert.Equal(t, before, h.sink.Len(), "sliders never render")
}

func TestOverrideWithoutConfig(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.True(t, h.engine.SetOverride(ctx, 40, false))
	assert.Equal(t, map[int]bool{40: false}, h.last(t).Overrides)
	assert.False(t, h.engine.SetOverride(ctx, 999, true))

	_, err := h.engine.Dispatch(ctx, domain.Action{Type: domain.ActionNavigate, Target: "pin"})
	assert.ErrorIs(t, err, domain.ErrNoConfig)
	assert.False(t, h.engine.Navigate(ctx, "pin"))
}
