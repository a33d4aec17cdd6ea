// Package goHawcx coordinates authentication sessions with the Hawcx engine.
//
// The engine acknowledges commands synchronously and reports their outcomes later
// on three broadcast channels (auth, session, push). [Client] turns that into
// per-call results: [Client.Authenticate] returns an [Invocation] that settles on
// the first terminal auth event, a cancellation, or a command failure. [AuthMachine]
// and [WebSessionMachine] project the same streams into observable state.
//
// Client methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goHawcx is the public surface. It exposes [Client], [Builder], [Config], [Hub],
// the [Bridge] command interface and the event value types. Listener bookkeeping
// lives in package emitter; settle-once correlation lives under internal/.
// Transports (transport/redisrelay) and engines (sim) plug in through [Hub] and
// [Bridge] and are never imported from here.
//
// # What this package must NOT do
//
//   - Retry or reorder engine commands.
//   - Log raw user identifiers or tokens; user ids are fingerprinted.
//   - Let a panicking listener or callback stop other listeners or leave an
//     invocation unsettled.
//   - Import any sub-package that re-imports goHawcx (no import cycles).
package goHawcx
