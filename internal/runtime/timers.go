package runtime

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/psdrun/pkg/domain"
)

// armScreenTimers schedules every timer element triggered by screen.
// Each firing is posted back through the poster and acts only while its
// handle is still tracked, so a cancelled timer never navigates.
func (e *Engine) armScreenTimers(screen string) {
	for _, el := range e.cfg.Elements {
		if el.Type != domain.ElementTimer || !slices.Contains(el.TriggerOn, screen) {
			continue
		}
		e.timerSeq++
		token := el
		id := e.timerSeq
		delay := time.Duration(el.Delay * float64(time.Second))
		e.screenTimers[id] = e.scheduler.AfterFunc(delay, func() {
			e.post(func() { e.fireScreenTimer(id, token, screen, delay) })
		})
		e.logger.Debug("screen timer armed", "screen", screen, "delay", delay, "target", el.Target)
	}
}

func (e *Engine) fireScreenTimer(id uint64, el domain.Element, screen string, delay time.Duration) {
	if _, tracked := e.screenTimers[id]; !tracked {
		e.logger.Debug("untracked screen timer ignored", "screen", screen)
		return
	}
	delete(e.screenTimers, id)

	ctx := context.Background()
	e.emitTimer(ctx, screen, el.Target, delay)
	if el.Action != domain.ActionNavigate {
		e.logger.Debug("screen timer without navigate action", "action", el.Action)
		return
	}
	e.Navigate(ctx, el.Target)
}

func (e *Engine) cancelScreenTimers() {
	for id, t := range e.screenTimers {
		t.Stop()
		delete(e.screenTimers, id)
	}
}

func (e *Engine) stopTimers() {
	e.cancelScreenTimers()
	e.clockGen++
	for id, t := range e.clocks {
		t.Stop()
		delete(e.clocks, id)
	}
}
