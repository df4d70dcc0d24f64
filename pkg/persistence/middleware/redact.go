package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/ports"
)

const redacted = "***"

type redactionMiddleware struct {
	ports.HintStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks hint names matching any pattern before they
// are persisted. Designers sometimes put client names or emails into layer
// names; those never reach the store.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.HintStore) ports.HintStore {
		return &redactionMiddleware{HintStore: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) SaveHints(ctx context.Context, docKey string, hints *domain.HintSet) error {
	cloned := &domain.HintSet{Version: hints.Version, Layers: make(map[string]domain.LayerHint, len(hints.Layers))}
	for id, h := range hints.Layers {
		if m.sensitive(h.Name) {
			h.Name = redacted
		}
		cloned.Layers[id] = h
	}
	return m.HintStore.SaveHints(ctx, docKey, cloned)
}

func (m *redactionMiddleware) sensitive(s string) bool {
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// MaskSecret shortens a credential for display, keeping a recognisable
// prefix and the last four characters of long values.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		if s == "" {
			return ""
		}
		return redacted
	}
	prefix := ""
	if i := strings.IndexByte(s, '-'); i > 0 && i < 4 {
		prefix = s[:i+1]
	}
	return prefix + redacted + s[len(s)-4:]
}
