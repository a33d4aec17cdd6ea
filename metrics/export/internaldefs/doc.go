// Package internaldefs groups goHawcx counters into labelled families shared by
// the Prometheus and OTel exporters, so both expose identical series.
//
// Each [Family] is one counter name (hawcx_auth_invocations_total,
// hawcx_engine_events_total, hawcx_commands_total, hawcx_backend_tokens_total,
// hawcx_client_faults_total) whose series differ by label: outcome, channel and
// type, command, result, kind. Engine event types use their wire names.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
