package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/psdrun/pkg/domain"
)

// Dispatch runs one action. It reports whether the action changed anything;
// references to unknown screens, elements or groups are not errors and
// simply report false.
func (e *Engine) Dispatch(ctx context.Context, a domain.Action) (bool, error) {
	if e.cfg == nil {
		return false, domain.ErrNoConfig
	}
	var applied bool
	switch a.Type {
	case domain.ActionNavigate:
		applied = e.Navigate(ctx, a.Target)
	case domain.ActionNavigateConditional:
		applied = e.NavigateConditional(ctx, a.Targets)
	case domain.ActionShowHighlight:
		applied = e.ShowHighlight(ctx, a.Target)
	case domain.ActionToggleHighlight:
		applied = e.ToggleHighlight(ctx, a.Target)
	case domain.ActionShowPopup:
		applied = e.ShowPopup(ctx, a.Target)
	case domain.ActionHidePopup, domain.ActionNavigateFromPopup:
		applied = e.HidePopup(ctx, a.Target)
	case domain.ActionInputDigit:
		applied = e.InputDigit(ctx, a.Value, a.Target)
	case domain.ActionClearInput:
		applied = e.ClearInput(ctx, a.Target)
	case domain.ActionSetSlider:
		applied = e.SetSlider(a.LayerID, a.Number)
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownAction, a.Type)
	}
	e.emitAction(ctx, a, applied)
	return applied, nil
}

// Click activates the element bound to layerID, if it is live.
func (e *Engine) Click(ctx context.Context, layerID int) (bool, error) {
	if e.cfg == nil {
		return false, domain.ErrNoConfig
	}
	el, ok := e.cfg.FindLayer(layerID)
	if !ok {
		e.logger.Debug("click on layer without element", "layer", layerID)
		return false, nil
	}
	if !e.Live(layerID) {
		e.logger.Debug("click on element that is not live", "layer", layerID, "screen", e.currentScreen)
		return false, nil
	}
	a := domain.ActionFor(el)
	if a.Type == "" {
		a.Type = impliedAction(el.Type)
	}
	if a.Type == "" {
		e.logger.Debug("element has no action", "layer", layerID, "type", el.Type)
		return false, nil
	}
	return e.Dispatch(ctx, a)
}

// impliedAction covers element types whose action is their type.
func impliedAction(t domain.ElementType) domain.ActionType {
	switch t {
	case domain.ElementInputDigit:
		return domain.ActionInputDigit
	case domain.ElementClearInput:
		return domain.ActionClearInput
	case domain.ElementConditional:
		return domain.ActionNavigateConditional
	}
	return ""
}

// Live reports whether the element on layerID can currently be interacted
// with: it belongs to the current screen or to no screen, and it is
// effectively visible.
func (e *Engine) Live(layerID int) bool {
	if screen, mapped := e.elementScreen[layerID]; mapped && screen != e.currentScreen {
		return false
	}
	return e.resolver.Effective(layerID, e.overrides)
}

// HitTest returns the topmost live element whose layer contains the point.
// Entries earlier in the layer sequence are on top.
func (e *Engine) HitTest(x, y int) (int, bool) {
	if e.cfg == nil {
		return 0, false
	}
	best, found := -1, false
	for _, el := range e.cfg.Elements {
		if el.Type == domain.ElementTimer || el.Type == domain.ElementScreen {
			continue
		}
		i, ok := e.tree.IndexOf(el.LayerID)
		if !ok || (found && i >= best) {
			continue
		}
		if e.tree.At(i).Rect.Contains(x, y) && e.Live(el.LayerID) {
			best, found = i, true
		}
	}
	if !found {
		return 0, false
	}
	return e.tree.At(best).ID, true
}

// SetSlider records a slider value, clamped to the element's range. Sliders
// are presentation state only and never trigger a render.
func (e *Engine) SetSlider(layerID int, v float64) bool {
	if e.cfg == nil {
		return false
	}
	el, ok := e.cfg.FindLayer(layerID)
	if !ok || el.Type != domain.ElementSlider {
		e.logger.Debug("unknown slider", "layer", layerID)
		return false
	}
	if el.Min != nil && v < *el.Min {
		v = *el.Min
	}
	if el.Max != nil && v > *el.Max {
		v = *el.Max
	}
	e.sliders[layerID] = v
	return true
}

// VisibleSet returns the effective visibility of every layer.
func (e *Engine) VisibleSet() map[int]bool {
	return e.resolver.VisibleSet(e.overrides)
}
