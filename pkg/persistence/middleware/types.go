// Package middleware wraps a ports.HintStore with storage policies: API key
// encryption at rest and redaction of sensitive layer names.
package middleware

import "github.com/aretw0/psdrun/pkg/ports"

// Middleware allows wrapping a HintStore to add behavior.
type Middleware func(ports.HintStore) ports.HintStore

// Chain applies middlewares so that the first one is outermost.
func Chain(store ports.HintStore, mws ...Middleware) ports.HintStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
