package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.IncScan("matched")
	metrics.IncScan("matched")
	metrics.IncScan("not_found")
	metrics.IncSettlement("completed")
	metrics.ObserveSettlementDuration(80 * time.Millisecond)
	metrics.IncDecrementFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pos_scans_total", "outcome", "matched"); err != nil {
		t.Fatalf("fetch scans: %v", err)
	} else if got != 2 {
		t.Fatalf("expected matched scans=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pos_settlements_total", "outcome", "completed"); err != nil {
		t.Fatalf("fetch settlements: %v", err)
	} else if got != 1 {
		t.Fatalf("expected settlements=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "pos_settlement_duration_seconds"); mf == nil {
		t.Fatal("settlement duration histogram not registered")
	} else if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}

	if mf := findMetricFamily(mfs, "pos_inventory_decrement_failures_total"); mf == nil {
		t.Fatal("decrement failure counter not registered")
	} else if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected decrement failures=1, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.IncScan("matched")
	metrics.IncSettlement("completed")
	metrics.ObserveSettlementDuration(time.Second)
	metrics.IncDecrementFailure()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
