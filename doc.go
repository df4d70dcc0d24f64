/*
Package psdrun turns a layered design document into a clickable prototype.

A document is a flat, pre-order sequence of layers in which groups are opened
by a group entry and closed by a groupEnd sentinel. On top of it an interaction
config, usually written by a language model, declares screens, buttons,
popups, highlight groups, digit displays, clocks and screen timers. psdrun
resolves which layers are effectively visible and runs the declared state
machine, handing every visibility change to a render bridge as one batch.

# Architecture

The library follows a hexagonal layout. pkg/domain holds the model,
pkg/layertree and pkg/visibility the pure visibility resolution,
internal/runtime the interaction state machine, pkg/render the ordering of
render requests and pkg/ports the interfaces adapters implement (render
bridge, hint store, snapshot store, scheduler). A Session wires them together
and serialises every event through one event loop.

# Usage

	doc, err := file.NewParser().ParseFile(ctx, "dump.json")
	if err != nil {
		log.Fatal(err)
	}

	s, err := psdrun.New(doc)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := s.SetConfigText(ctx, modelReply); err != nil {
		log.Printf("config rejected: %v", err)
	}
	s.Click(ctx, 101)

Without WithBridge a session renders into a headless in-memory bridge, which
is enough to drive and test prototypes without a compositor.
*/
package psdrun
