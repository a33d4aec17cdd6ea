package otel

import (
	"context"
	"sync"
	"testing"

	goHawcx "github.com/MrEthical07/goHawcx"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goHawcx.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goHawcx.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goHawcx.MetricsSnapshot{
		Counters:   make(map[goHawcx.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goHawcx.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

// findSum returns the data point of the named sum whose attributes include key=value.
// An empty key matches the first point.
func findSum(rm metricdata.ResourceMetrics, name, key, value string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				return 0, false
			}
			for _, dp := range sum.DataPoints {
				if key == "" {
					return dp.Value, true
				}
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					return dp.Value, true
				}
			}
			return 0, false
		}
	}
	return 0, false
}

func findGauge(rm metricdata.ResourceMetrics, name, le string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				return 0, false
			}
			for _, dp := range gauge.DataPoints {
				if le == "" {
					return dp.Value, true
				}
				if v, ok := dp.Attributes.Value("le"); ok && v.AsString() == le {
					return dp.Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter()
	meter := provider.Meter("gohawcx-test")

	src := &fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters: map[goHawcx.MetricID]uint64{
				goHawcx.MetricAuthSucceeded: 3,
				goHawcx.MetricPushFailure:   2,
			},
			Histograms: map[goHawcx.MetricID][]uint64{
				goHawcx.MetricAuthSettleLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got, ok := findSum(rm, "hawcx_auth_invocations_total", "outcome", "succeeded"); !ok || got != 3 {
		t.Fatalf("expected succeeded outcome=3, got %d (found=%v)", got, ok)
	}
	if got, ok := findSum(rm, "hawcx_auth_invocations_total", "outcome", "failed"); !ok || got != 0 {
		t.Fatalf("expected failed outcome=0, got %d (found=%v)", got, ok)
	}
	if got, ok := findSum(rm, "hawcx_engine_events_total", "type", goHawcx.EventPushError); !ok || got != 2 {
		t.Fatalf("expected push_error events=2, got %d (found=%v)", got, ok)
	}
	if got, ok := findGauge(rm, "hawcx_auth_settle_latency_seconds_bucket", "+Inf"); !ok || got != 8 {
		t.Fatalf("expected +Inf bucket=8, got %d (found=%v)", got, ok)
	}
	if got, ok := findGauge(rm, "hawcx_auth_settle_latency_seconds_count", ""); !ok || got != 8 {
		t.Fatalf("expected count=8, got %d (found=%v)", got, ok)
	}
	if got, ok := findSum(rm, "hawcx_audit_dropped_total", "", ""); !ok || got != 1 {
		t.Fatalf("expected hawcx_audit_dropped_total=1, got %d (found=%v)", got, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter()
	meter := provider.Meter("gohawcx-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil client, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter()
	meter := provider.Meter("gohawcx-test")

	src := &fakeSource{
		snapshot: goHawcx.MetricsSnapshot{
			Counters: map[goHawcx.MetricID]uint64{
				goHawcx.MetricAuthStarted: 1,
			},
			Histograms: map[goHawcx.MetricID][]uint64{
				goHawcx.MetricAuthSettleLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goHawcx.MetricAuthStarted] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
