package runtime

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/psdrun/pkg/domain"
)

// emptyDigit marks an unfilled digit position.
const emptyDigit = "-"

// InputDigit feeds digit, a single character, into the displays named by
// targets, a comma separated list ordered left to right.
//
// One display holds a two character buffer: "--" becomes "-d", "-x" becomes
// "xd" and a full buffer is left unchanged. Several displays hold one
// character each: when any is empty, every value shifts one position left and
// the rightmost display receives digit; when all are full nothing happens.
// The policy follows the number of names in targets, and nothing happens when
// any of them is unknown.
func (e *Engine) InputDigit(ctx context.Context, digit, targets string) bool {
	if e.cfg == nil {
		return false
	}
	if utf8.RuneCountInString(digit) != 1 {
		e.logger.Debug("digit must be one character", "digit", digit)
		return false
	}
	displays, missing := e.resolveDisplays(targets)
	if len(displays) == 0 || missing > 0 {
		e.logger.Debug("digit input ignored", "targets", targets, "unknown", missing)
		return false
	}

	var texts []domain.TextUpdate
	if len(displays) == 1 {
		id := displays[0].LayerID
		next, changed := pushDigit(e.texts[id], digit)
		if !changed {
			e.logger.Debug("display full", "layer", id)
			return false
		}
		e.texts[id] = next
		texts = append(texts, domain.TextUpdate{LayerID: id, Text: next})
	} else {
		current := make([]string, len(displays))
		full := true
		for i, d := range displays {
			current[i] = e.texts[d.LayerID]
			if isEmptyDigit(current[i]) {
				full = false
			}
		}
		if full {
			e.logger.Debug("displays full", "targets", targets)
			return false
		}
		for i, d := range displays {
			next := digit
			if i < len(displays)-1 {
				next = current[i+1]
			}
			if next == "" {
				next = emptyDigit
			}
			if next != current[i] {
				e.texts[d.LayerID] = next
				texts = append(texts, domain.TextUpdate{LayerID: d.LayerID, Text: next})
			}
		}
	}
	e.commit(ctx, "input_digit", nil, texts)
	return true
}

// ClearInput resets the named displays to their configured value, or "-".
func (e *Engine) ClearInput(ctx context.Context, targets string) bool {
	if e.cfg == nil {
		return false
	}
	displays, _ := e.resolveDisplays(targets)
	if len(displays) == 0 {
		return false
	}
	texts := make([]domain.TextUpdate, 0, len(displays))
	for _, d := range displays {
		v := d.Value
		if v == "" {
			v = emptyDigit
		}
		e.texts[d.LayerID] = v
		texts = append(texts, domain.TextUpdate{LayerID: d.LayerID, Text: v})
	}
	e.commit(ctx, "clear_input", nil, texts)
	return true
}

// resolveDisplays maps target names to display or dynamic_text elements,
// keeping order. Names that match nothing are skipped and counted.
func (e *Engine) resolveDisplays(targets string) ([]domain.Element, int) {
	names := domain.Element{Target: targets}.TargetList()
	out := make([]domain.Element, 0, len(names))
	missing := 0
	for _, name := range names {
		el, ok := e.cfg.FindNamed(domain.ElementDisplay, name)
		if !ok {
			el, ok = e.cfg.FindNamed(domain.ElementDynamicText, name)
		}
		if !ok {
			e.logger.Debug("unknown display", "name", name)
			missing++
			continue
		}
		out = append(out, el)
	}
	return out, missing
}

// pushDigit applies one digit to a two character buffer.
func pushDigit(current, digit string) (string, bool) {
	runes := []rune(current)
	for len(runes) < 2 {
		runes = append([]rune(emptyDigit), runes...)
	}
	d1, d2 := string(runes[len(runes)-2]), string(runes[len(runes)-1])
	switch {
	case d1 == emptyDigit && d2 == emptyDigit:
		return emptyDigit + digit, true
	case d1 == emptyDigit:
		return d2 + digit, true
	default:
		return current, false
	}
}

func isEmptyDigit(s string) bool {
	return strings.TrimSpace(s) == "" || s == emptyDigit
}
