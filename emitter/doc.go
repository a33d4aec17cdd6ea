// Package emitter provides named, multi-listener broadcast channels with
// idempotent subscription handles.
//
// # Delivery
//
// [Channel.Emit] delivers an event synchronously, on the emitting goroutine, to a
// snapshot of the listeners active at the time of the call, in subscription order.
// A listener removed while an emit is in progress is not invoked afterwards.
//
// # Architecture boundaries
//
// This package owns listener bookkeeping only. Decoding wire records and knowing
// about authentication flows belong to goHawcx.
//
// # What this package must NOT do
//
//   - Import goHawcx or any transport package (no upward imports).
//   - Let a panicking listener unwind into the emitter's caller.
package emitter
