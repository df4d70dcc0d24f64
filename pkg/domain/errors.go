package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrLayerNotFound is returned when a layer id is not part of the loaded document.
var ErrLayerNotFound = errors.New("layer not found")

// ErrNotTextLayer is returned when text is pushed to a layer that holds no text.
var ErrNotTextLayer = errors.New("layer is not a text layer")

// ErrUnbalancedTree is returned when group and groupEnd entries do not pair up.
var ErrUnbalancedTree = errors.New("unbalanced layer tree")

// ErrInvalidConfig is wrapped by every interaction configuration rejection.
var ErrInvalidConfig = errors.New("invalid interaction config")

// ErrNoConfig is returned when an action arrives before any configuration was loaded.
var ErrNoConfig = errors.New("no interaction config loaded")

// ErrNoDocument is returned when a session has no layer tree yet.
var ErrNoDocument = errors.New("no document loaded")

// ErrHintsNotFound is returned by hint stores when nothing was saved under a key.
var ErrHintsNotFound = errors.New("hints not found")

// ErrUnknownAction is returned for dispatched action types the runtime does not handle.
var ErrUnknownAction = errors.New("unknown action")
