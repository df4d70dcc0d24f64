package runtime

import (
	"context"
	"time"

	"github.com/aretw0/psdrun/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.scheduler.Now(), Type: t, SessionID: e.sessionID}
}

func (e *Engine) emitScreen(ctx context.Context, t domain.EventType, screen string) {
	hook := e.hooks.OnScreenEnter
	if t == domain.EventScreenLeave {
		hook = e.hooks.OnScreenLeave
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.ScreenEvent{EventBase: e.base(t), Screen: screen})
}

func (e *Engine) emitAction(ctx context.Context, a domain.Action, applied bool) {
	if e.hooks.OnAction == nil {
		return
	}
	e.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: e.base(domain.EventAction),
		Action:    a.Type,
		Target:    a.Target,
		Applied:   applied,
	})
}

func (e *Engine) emitTimer(ctx context.Context, screen, target string, delay time.Duration) {
	if e.hooks.OnTimerFired == nil {
		return
	}
	e.hooks.OnTimerFired(ctx, &domain.TimerEvent{
		EventBase: e.base(domain.EventTimerFired),
		Screen:    screen,
		Target:    target,
		Delay:     delay,
	})
}

func (e *Engine) emitConfig(ctx context.Context, cfg *domain.InteractionConfig) {
	if e.hooks.OnConfig == nil {
		return
	}
	e.hooks.OnConfig(ctx, &domain.ConfigEvent{
		EventBase:     e.base(domain.EventConfigLoaded),
		Screens:       len(cfg.Screens),
		Elements:      len(cfg.Elements),
		InitialScreen: cfg.InitialScreen,
	})
}
