// Package correlate turns a fire-and-forget command plus a later, un-addressed event
// stream into a single future that settles at most once.
//
// # Ordering
//
// [Start] subscribes to the event source before the command goroutine is started, so
// an event produced by a fast engine can never arrive before the listener exists.
//
// # Settlement
//
// Exactly one of {terminal event, command failure, Cancel} settles a [Flow]. The
// subscription is removed in the same critical section that records the outcome. A
// flow that sees neither a terminal event nor a command failure stays pending; callers
// bound their own waiting through the context given to [Flow.Wait].
package correlate
