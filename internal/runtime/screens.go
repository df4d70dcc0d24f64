package runtime

import (
	"context"
	"slices"

	"github.com/aretw0/psdrun/pkg/domain"
)

// Navigate switches to screen. Pending screen timers are cancelled, popups
// closed and highlight selections kept; the new visibility of every screen,
// showOn, highlight and popup element goes out as one batch.
// Undeclared screens are ignored.
func (e *Engine) Navigate(ctx context.Context, screen string) bool {
	if e.cfg == nil {
		return false
	}
	if !e.cfg.HasScreen(screen) {
		e.logger.Debug("navigate to undeclared screen ignored", "screen", screen)
		return false
	}
	batch := e.enterScreen(ctx, screen)
	e.commit(ctx, "navigate", batch, nil)
	return true
}

// NavigateConditional navigates to targets[current screen], if present.
func (e *Engine) NavigateConditional(ctx context.Context, targets map[string]string) bool {
	if e.cfg == nil {
		return false
	}
	next, ok := targets[e.currentScreen]
	if !ok {
		e.logger.Debug("no conditional target for screen", "screen", e.currentScreen)
		return false
	}
	return e.Navigate(ctx, next)
}

func (e *Engine) enterScreen(ctx context.Context, screen string) map[int]bool {
	e.cancelScreenTimers()
	prev := e.currentScreen
	e.currentScreen = screen
	clear(e.popups)
	batch := e.screenBatch()
	e.armScreenTimers(screen)

	if prev != "" {
		e.emitScreen(ctx, domain.EventScreenLeave, prev)
	}
	e.emitScreen(ctx, domain.EventScreenEnter, screen)
	e.logger.Info("screen entered", "from", prev, "to", screen)
	return batch
}

// screenBatch derives the visibility of every screen-dependent element for the
// current screen, popups and highlight selections.
func (e *Engine) screenBatch() map[int]bool {
	batch := make(map[int]bool)
	for _, el := range e.cfg.Elements {
		switch {
		case el.Type == domain.ElementScreen:
			batch[el.LayerID] = el.Name == e.currentScreen
		case el.Type == domain.ElementHighlight:
			batch[el.LayerID] = e.highlights[el.Group] == el.Name
		case el.Type == domain.ElementPopup:
			_, active := e.popups[el.Name]
			batch[el.LayerID] = active
		}
		if len(el.ShowOn) > 0 {
			batch[el.LayerID] = slices.Contains(el.ShowOn, e.currentScreen)
		}
	}
	return batch
}

// ScreenOf returns the screen whose group encloses layerID.
func (e *Engine) ScreenOf(layerID int) (string, bool) {
	s, ok := e.elementScreen[layerID]
	return s, ok
}
