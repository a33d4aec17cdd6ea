package internaldefs

import (
	goHawcx "github.com/MrEthical07/goHawcx"
)

// Label is one name="value" pair attached to a series.
type Label struct {
	Name  string
	Value string
}

// Series maps one goHawcx counter to its labels within a family.
type Series struct {
	ID     goHawcx.MetricID
	Labels []Label
}

// Family is a labelled counter: every Series shares Name and Help.
type Family struct {
	Name   string
	Help   string
	Series []Series
}

// HistogramDef names one goHawcx latency histogram.
type HistogramDef struct {
	ID   goHawcx.MetricID
	Name string
	Help string
}

func outcome(id goHawcx.MetricID, v string) Series {
	return Series{ID: id, Labels: []Label{{Name: "outcome", Value: v}}}
}

func event(id goHawcx.MetricID, channel, typ string) Series {
	return Series{ID: id, Labels: []Label{{Name: "channel", Value: channel}, {Name: "type", Value: typ}}}
}

func single(id goHawcx.MetricID, name, v string) Series {
	return Series{ID: id, Labels: []Label{{Name: name, Value: v}}}
}

// Families lists every exported counter, grouped by what it measures. Order is
// stable and every counter appears exactly once.
var Families = []Family{
	{
		Name: "hawcx_auth_invocations_total",
		Help: "Authenticate invocations by lifecycle outcome; started counts every invocation that reached the engine.",
		Series: []Series{
			outcome(goHawcx.MetricAuthStarted, "started"),
			outcome(goHawcx.MetricAuthSucceeded, "succeeded"),
			outcome(goHawcx.MetricAuthFailed, "failed"),
			outcome(goHawcx.MetricAuthCancelled, "cancelled"),
			outcome(goHawcx.MetricAuthCommandFailed, "command_failed"),
		},
	},
	{
		Name: "hawcx_engine_events_total",
		Help: "Engine events delivered to listeners, by channel and event type.",
		Series: []Series{
			event(goHawcx.MetricOTPRequired, "auth", goHawcx.EventOTPRequired),
			event(goHawcx.MetricAuthorizationCode, "auth", goHawcx.EventAuthorizationCode),
			event(goHawcx.MetricAdditionalVerification, "auth", goHawcx.EventAdditionalVerificationRequired),
			event(goHawcx.MetricSessionSuccess, "session", goHawcx.EventSessionSuccess),
			event(goHawcx.MetricSessionFailure, "session", goHawcx.EventSessionError),
			event(goHawcx.MetricPushLoginRequest, "push", goHawcx.EventPushLoginRequest),
			event(goHawcx.MetricPushFailure, "push", goHawcx.EventPushError),
		},
	},
	{
		Name: "hawcx_commands_total",
		Help: "Engine commands acknowledged, by command.",
		Series: []Series{
			single(goHawcx.MetricOTPSubmitted, "command", "submit_otp"),
			single(goHawcx.MetricWebLogin, "command", "web_login"),
			single(goHawcx.MetricWebApprove, "command", "web_approve"),
			single(goHawcx.MetricPushApproved, "command", "approve_push_request"),
			single(goHawcx.MetricPushDeclined, "command", "decline_push_request"),
		},
	},
	{
		Name: "hawcx_backend_tokens_total",
		Help: "Backend-issued token hand-offs to the engine, by result.",
		Series: []Series{
			single(goHawcx.MetricTokensStored, "result", "stored"),
			single(goHawcx.MetricTokensStoreFailed, "result", "failed"),
		},
	},
	{
		Name: "hawcx_client_faults_total",
		Help: "Client-side faults that never reached an outcome: rejected input, undecodable records, panicking listeners.",
		Series: []Series{
			single(goHawcx.MetricValidationRejected, "kind", "validation_rejected"),
			single(goHawcx.MetricEventDecodeFailure, "kind", "event_decode_failure"),
			single(goHawcx.MetricListenerPanic, "kind", "listener_panic"),
		},
	},
}

// AuditDropped names the counter fed by AuditDropped rather than a MetricID.
var AuditDropped = Family{
	Name: "hawcx_audit_dropped_total",
	Help: "Audit events dropped because the dispatcher buffer was full.",
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goHawcx.MetricAuthSettleLatency, Name: "hawcx_auth_settle_latency_seconds", Help: "Time from authenticate to settlement, whatever the outcome."},
}

// HistogramBounds are the Prometheus le labels matching goHawcx.HistogramBoundsMillis.
var HistogramBounds = []string{"0.01", "0.05", "0.1", "0.5", "1", "5", "30", "+Inf"}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
