package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goHawcx "github.com/MrEthical07/goHawcx"
)

type fakeSource struct {
	snapshot goHawcx.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goHawcx.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters:   map[goHawcx.MetricID]uint64{},
			Histograms: map[goHawcx.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderGroupsCountersIntoLabelledFamilies(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters: map[goHawcx.MetricID]uint64{
				goHawcx.MetricAuthSucceeded: 7,
				goHawcx.MetricOTPRequired:   3,
				goHawcx.MetricPushFailure:   2,
				goHawcx.MetricWebApprove:    4,
				goHawcx.MetricTokensStored:  5,
				goHawcx.MetricListenerPanic: 1,
			},
			Histograms: map[goHawcx.MetricID][]uint64{
				goHawcx.MetricAuthSettleLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		`hawcx_auth_invocations_total{outcome="succeeded"} 7`,
		`hawcx_auth_invocations_total{outcome="cancelled"} 0`,
		`hawcx_engine_events_total{channel="auth",type="otp_required"} 3`,
		`hawcx_engine_events_total{channel="push",type="push_error"} 2`,
		`hawcx_commands_total{command="web_approve"} 4`,
		`hawcx_backend_tokens_total{result="stored"} 5`,
		`hawcx_client_faults_total{kind="listener_panic"} 1`,
		`hawcx_auth_settle_latency_seconds_bucket{le="0.01"} 1`,
		`hawcx_auth_settle_latency_seconds_bucket{le="+Inf"} 36`,
		"hawcx_auth_settle_latency_seconds_count 36",
		"hawcx_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}

	// one header per family, not per series
	if n := strings.Count(out, "# TYPE hawcx_engine_events_total counter"); n != 1 {
		t.Fatalf("expected one TYPE line for the events family, got %d", n)
	}
	if n := strings.Count(out, "hawcx_engine_events_total{"); n != 7 {
		t.Fatalf("expected 7 event series, got %d", n)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel("a\"b\\c\nd"); got != `a\"b\\c\nd` {
		t.Fatalf("unexpected escape %q", got)
	}
}

func TestNilClientRendersNothing(t *testing.T) {
	if got := NewPrometheusExporter(nil).Render(); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters:   map[goHawcx.MetricID]uint64{goHawcx.MetricAuthStarted: 1},
			Histograms: map[goHawcx.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hawcx_auth_invocations_total{outcome="started"} 1`) {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters: map[goHawcx.MetricID]uint64{
				goHawcx.MetricAuthStarted:   1000,
				goHawcx.MetricAuthSucceeded: 900,
				goHawcx.MetricAuthFailed:    80,
				goHawcx.MetricAuthCancelled: 20,
				goHawcx.MetricOTPRequired:   1100,
			},
			Histograms: map[goHawcx.MetricID][]uint64{
				goHawcx.MetricAuthSettleLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
