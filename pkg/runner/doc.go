/*
Package runner implements the per-session event loop and the interactive
terminal player.

The interaction runtime is not safe for concurrent use. A Loop owns one
goroutine that executes every event of a session in arrival order: user
actions posted by adapters, screen timer firings and clock ticks posted by
the scheduler. Because callbacks only ever run on the loop goroutine, state is
always updated before the next event observes it.

# Key Components

  - Loop: an unbounded FIFO of closures drained by Run.
  - Player: a line-oriented REPL that turns commands such as "click 101" or
    "nav home" into actions against a Controller.
  - ParseCommand: the command grammar shared by the player and tests.

# Usage

	loop := runner.NewLoop(runner.WithLogger(logger))
	go loop.Run(ctx)

	engine := runtime.NewEngine(tree, runtime.WithPoster(loop.Post))
	err := loop.Do(ctx, func() { engine.Navigate(ctx, "home") })
*/
package runner
