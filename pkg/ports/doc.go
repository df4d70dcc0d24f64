/*
Package ports defines the driven ports (interfaces) of the psdrun runtime.

These interfaces decouple the interaction runtime from the compositor, the
clock and the storage backends, so sessions can run headless in tests and
servers and against a real renderer in a host application.

# Key Interfaces

  - RenderBridge: Applies override snapshots and text updates, returns bitmaps.
  - DocumentParser: Produces the flat layer sequence of a document.
  - Scheduler: Arms screen timers and clock ticks.
  - HintStore: Persists export hints and the model API key.
  - SnapshotStore: Persists session snapshots for resume.
  - DistributedLocker: Serialises read-modify-write cycles across replicas.
*/
package ports
