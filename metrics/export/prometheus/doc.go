// Package prometheus renders goHawcx client metrics in the Prometheus text format.
//
// Counters are grouped into labelled families, for example
// hawcx_engine_events_total{channel="auth",type="otp_required"}; the single
// histogram is hawcx_auth_settle_latency_seconds. Callers mount
// [PrometheusExporter.Handler] themselves; no global registry is touched.
package prometheus
