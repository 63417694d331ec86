package perf

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/niaxtu/niaxtu-admin/internal/jobs"
)

func TestWorkerJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	// Session checks finish fast and mostly successful.
	for i := 0; i < 40; i++ {
		tracker := metrics.Track("verify_session")
		time.Sleep(5 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending verify tracker: %v", err)
		}
	}

	// Stats warmups pay the API round-trip but stay within budget.
	for i := 0; i < 10; i++ {
		tracker := metrics.Track("stats_warmup")
		time.Sleep(20 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending warmup tracker: %v", err)
		}
	}

	// Inject a couple of failures so the alert expressions have data.
	for i := 0; i < 2; i++ {
		tracker := metrics.Track("verify_session")
		time.Sleep(6 * time.Millisecond)
		if err := tracker.End(errors.New("timeout")); err == nil {
			t.Fatal("expected error to propagate")
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "niaxtu_jobs_total", map[string]string{"job": "verify_session", "status": "success"})
	failure := metricValue(t, families, "niaxtu_jobs_total", map[string]string{"job": "verify_session", "status": "failure"})
	if success+failure == 0 {
		t.Fatal("no session check executions recorded")
	}
	ratio := success / (success + failure)
	if ratio < 0.9 {
		t.Fatalf("session check success ratio too low: %f", ratio)
	}

	warmupDuration := histogramMean(t, families, "niaxtu_job_duration_seconds", map[string]string{"job": "stats_warmup"})
	if warmupDuration > 2.0 {
		t.Fatalf("stats warmup duration above budget: %f", warmupDuration)
	}

	verifyDuration := histogramMean(t, families, "niaxtu_job_duration_seconds", map[string]string{"job": "verify_session"})
	if verifyDuration > 0.5 {
		t.Fatalf("session check duration above budget: %f", verifyDuration)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
