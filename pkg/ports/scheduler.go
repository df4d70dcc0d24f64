package ports

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents a pending callback from running. It reports whether the
	// call stopped the timer.
	Stop() bool
}

// Scheduler arms the screen timers and clock ticks of a session.
// Callbacks run on a scheduler goroutine; callers post them back to their own
// event loop.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}
