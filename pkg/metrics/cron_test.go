package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("sweep", 250*time.Millisecond)
	m.IncSuccess("sweep")
	m.IncFailure("sweep")
	m.IncFailure("sweep")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	if got := counterValue(t, families, "cron_job_success_total", "sweep"); got != 1 {
		t.Fatalf("success total = %f, want 1", got)
	}
	if got := counterValue(t, families, "cron_job_failure_total", "sweep"); got != 2 {
		t.Fatalf("failure total = %f, want 2", got)
	}
	if got := histogramSum(t, families, "cron_job_duration_seconds", "sweep"); got <= 0 {
		t.Fatalf("duration sum = %f, want > 0", got)
	}
}

func TestCronJobMetricsNilRegistererIsNoOp(t *testing.T) {
	m := NewCronJobMetrics(nil)
	m.ObserveDuration("sweep", time.Second)
	m.IncSuccess("sweep")
	m.IncFailure("sweep")
}

func TestCronJobMetricsEmptyJobLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.IncSuccess("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got := counterValue(t, families, "cron_job_success_total", "unknown"); got != 1 {
		t.Fatalf("empty job name should count under %q, got %f", "unknown", got)
	}
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	metric := findMetric(families, name, job)
	if metric == nil {
		t.Fatalf("metric %s{job=%q} not found", name, job)
	}
	return metric.GetCounter().GetValue()
}

func histogramSum(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	metric := findMetric(families, name, job)
	if metric == nil {
		t.Fatalf("metric %s{job=%q} not found", name, job)
	}
	return metric.GetHistogram().GetSampleSum()
}

func findMetric(families []*dto.MetricFamily, name, job string) *dto.Metric {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric
				}
			}
		}
	}
	return nil
}
