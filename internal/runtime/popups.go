package runtime

import (
	"context"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ShowPopup opens a popup without touching the others.
func (e *Engine) ShowPopup(ctx context.Context, name string) bool {
	if e.cfg == nil {
		return false
	}
	batch := make(map[int]bool)
	for _, el := range e.cfg.Elements {
		if el.Type == domain.ElementPopup && el.Name == name {
			batch[el.LayerID] = true
		}
	}
	if len(batch) == 0 {
		e.logger.Debug("unknown popup", "name", name)
		return false
	}
	e.popups[name] = struct{}{}
	e.commit(ctx, "show_popup", batch, nil)
	return true
}

// HidePopup closes every popup. With a target it navigates there; otherwise
// the current screen is re-applied with no popups open.
func (e *Engine) HidePopup(ctx context.Context, target string) bool {
	if e.cfg == nil {
		return false
	}
	clear(e.popups)
	if target != "" {
		if e.Navigate(ctx, target) {
			return true
		}
	}
	e.commit(ctx, "hide_popup", e.screenBatch(), nil)
	return true
}
