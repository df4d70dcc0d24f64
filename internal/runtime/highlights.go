package runtime

import (
	"context"

	"github.com/aretw0/psdrun/pkg/domain"
)

// ShowHighlight selects name within its group. Only that group's highlight
// elements are re-rendered.
func (e *Engine) ShowHighlight(ctx context.Context, name string) bool {
	if e.cfg == nil {
		return false
	}
	el, ok := e.cfg.FindNamed(domain.ElementHighlight, name)
	if !ok {
		e.logger.Debug("unknown highlight", "name", name)
		return false
	}
	e.highlights[el.Group] = name
	e.commit(ctx, "show_highlight", e.groupBatch(el.Group), nil)
	return true
}

// ToggleHighlight clears the group when name is already selected and selects
// it otherwise.
func (e *Engine) ToggleHighlight(ctx context.Context, name string) bool {
	if e.cfg == nil {
		return false
	}
	el, ok := e.cfg.FindNamed(domain.ElementHighlight, name)
	if !ok {
		e.logger.Debug("unknown highlight", "name", name)
		return false
	}
	if e.highlights[el.Group] != name {
		return e.ShowHighlight(ctx, name)
	}
	delete(e.highlights, el.Group)
	e.commit(ctx, "toggle_highlight", e.groupBatch(el.Group), nil)
	return true
}

func (e *Engine) groupBatch(group string) map[int]bool {
	selected, has := e.highlights[group]
	batch := make(map[int]bool)
	for _, el := range e.cfg.Elements {
		if el.Type == domain.ElementHighlight && el.Group == group {
			batch[el.LayerID] = has && el.Name == selected
		}
	}
	return batch
}
