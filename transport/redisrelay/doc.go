// Package redisrelay carries engine events over Redis pub/sub.
//
// A [Relay] subscribes to the auth, session and push channel names and feeds every
// record it receives into a goHawcx.Hub. A [Publisher] does the reverse and is what
// an out-of-process engine (or the sim package) uses to emit events.
//
// # Architecture boundaries
//
//   - Records on the wire are the {type, payload} JSON produced by goHawcx.MarshalEvent.
//   - Channel names are optionally prefixed so several deployments can share a Redis.
//
// # What this package must NOT do
//
//   - Interpret events. Decoding and fan-out belong to the Hub.
//   - Retry or buffer. Redis pub/sub is fire-and-forget, like the engine.
package redisrelay
