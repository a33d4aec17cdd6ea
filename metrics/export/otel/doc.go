// Package otel exposes goHawcx client metrics through OpenTelemetry.
//
// [NewOTelExporter] registers one Int64ObservableCounter per family from
// internaldefs and observes each series with its labels as attributes. The settle
// latency histogram becomes a <name>_bucket gauge keyed by an le attribute plus a
// <name>_count gauge. A single callback reads [goHawcx.Client.MetricsSnapshot] on
// each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate client state.
package otel
