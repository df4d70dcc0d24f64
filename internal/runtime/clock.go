package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/psdrun/pkg/domain"
)

const defaultClockFormat = "HH:mm"

// FormatClock renders t with the HH, mm and ss tokens, replaced in that order.
func FormatClock(format string, t time.Time) string {
	if format == "" {
		format = defaultClockFormat
	}
	s := strings.ReplaceAll(format, "HH", fmt.Sprintf("%02d", t.Hour()))
	s = strings.ReplaceAll(s, "mm", fmt.Sprintf("%02d", t.Minute()))
	return strings.ReplaceAll(s, "ss", fmt.Sprintf("%02d", t.Second()))
}

// startClocks arms a one second ticker per clock element and returns the
// initial clock texts for the caller to render.
func (e *Engine) startClocks() []domain.TextUpdate {
	var texts []domain.TextUpdate
	now := e.scheduler.Now()
	gen := e.clockGen
	for _, el := range e.cfg.Elements {
		if el.Type != domain.ElementClock {
			continue
		}
		if _, running := e.clocks[el.LayerID]; running {
			continue
		}
		clock := el
		text := FormatClock(el.Format, now)
		e.texts[el.LayerID] = text
		texts = append(texts, domain.TextUpdate{LayerID: el.LayerID, Text: text})
		e.clocks[el.LayerID] = e.scheduler.Every(time.Second, func() {
			e.post(func() {
				// Ticks queued before the clocks were stopped are dropped.
				if gen == e.clockGen && e.cfg != nil {
					e.tickClock(context.Background(), clock)
				}
			})
		})
	}
	return texts
}

func (e *Engine) tickClock(ctx context.Context, el domain.Element) {
	text := FormatClock(el.Format, e.scheduler.Now())
	e.texts[el.LayerID] = text
	e.commit(ctx, "clock", nil, []domain.TextUpdate{{LayerID: el.LayerID, Text: text}})
}
