package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/psdrun/pkg/domain"
)

// LogHooks logs lifecycle events: screen changes and configs at Info, actions
// and frames at Debug, render failures at Error.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.InfoContext(ctx, "screen_enter", "session_id", e.SessionID, "screen", e.Screen)
		},
		OnScreenLeave: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.DebugContext(ctx, "screen_leave", "session_id", e.SessionID, "screen", e.Screen)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action",
				"session_id", e.SessionID,
				"action", e.Action,
				"target", e.Target,
				"applied", e.Applied,
			)
		},
		OnTimerFired: func(ctx context.Context, e *domain.TimerEvent) {
			logger.InfoContext(ctx, "timer_fired", "session_id", e.SessionID, "screen", e.Screen, "target", e.Target)
		},
		OnConfig: func(ctx context.Context, e *domain.ConfigEvent) {
			logger.InfoContext(ctx, "config_loaded",
				"session_id", e.SessionID,
				"screens", e.Screens,
				"elements", e.Elements,
				"initial", e.InitialScreen,
			)
		},
		OnFrame: func(ctx context.Context, e *domain.RenderEvent) {
			logger.DebugContext(ctx, "frame", "session_id", e.SessionID, "seq", e.Seq, "stale", e.Stale, "duration", e.Duration)
		},
		OnRenderError: func(ctx context.Context, e *domain.RenderEvent) {
			logger.ErrorContext(ctx, "render_error", "session_id", e.SessionID, "seq", e.Seq, "err", e.Err)
		},
	}
}
