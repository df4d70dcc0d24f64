package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the psdrun collectors.
type Metrics struct {
	screenEnters   *prometheus.CounterVec
	actions        *prometheus.CounterVec
	timersFired    prometheus.Counter
	configsLoaded  prometheus.Counter
	frames         *prometheus.CounterVec
	renderDuration prometheus.Histogram
	renderErrors   prometheus.Counter
	sessions       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		screenEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psdrun_screen_enters_total",
			Help: "Number of times each screen was entered.",
		}, []string{"screen"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psdrun_actions_total",
			Help: "Dispatched actions by type and whether they applied.",
		}, []string{"action", "applied"}),
		timersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdrun_screen_timers_fired_total",
			Help: "Screen timers that fired while armed.",
		}),
		configsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdrun_configs_loaded_total",
			Help: "Interaction configs accepted.",
		}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psdrun_frames_total",
			Help: "Recomposited frames, split by whether they were discarded as stale.",
		}, []string{"stale"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "psdrun_render_duration_seconds",
			Help:    "Time from render request to composited frame.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		renderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdrun_render_errors_total",
			Help: "Failed render bridge calls.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psdrun_active_sessions",
			Help: "Sessions currently open.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.screenEnters, m.actions, m.timersFired, m.configsLoaded,
		m.frames, m.renderDuration, m.renderErrors, m.sessions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(_ context.Context, e *domain.ScreenEvent) {
			m.screenEnters.WithLabelValues(e.Screen).Inc()
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(string(e.Action), strconv.FormatBool(e.Applied)).Inc()
		},
		OnTimerFired: func(context.Context, *domain.TimerEvent) {
			m.timersFired.Inc()
		},
		OnConfig: func(context.Context, *domain.ConfigEvent) {
			m.configsLoaded.Inc()
		},
		OnFrame: func(_ context.Context, e *domain.RenderEvent) {
			m.frames.WithLabelValues(strconv.FormatBool(e.Stale)).Inc()
			m.renderDuration.Observe(e.Duration.Seconds())
		},
		OnRenderError: func(context.Context, *domain.RenderEvent) {
			m.renderErrors.Inc()
		},
	}
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }
