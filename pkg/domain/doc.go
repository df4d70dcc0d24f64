/*
Package domain contains the core models of the psdrun interaction runtime.

It defines the flattened layer sequence of a design document, the interaction
configuration that turns layers into a clickable prototype, and the values
exchanged with renderers and observers. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - LayerNode: One entry of the pre-order layer sequence (layer, group or groupEnd).
  - Element: An interaction element bound to a layer (screen, button, display...).
  - InteractionConfig: Screens, elements and the initial screen of a prototype.
  - RenderRequest: The override snapshot and text updates produced by one action.
  - Snapshot: A copy of a session's runtime state, diffable with Diff.
*/
package domain
