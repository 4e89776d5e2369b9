package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records scan and settlement activity for the checkout pipeline.
type CheckoutMetrics struct {
	scans              *prometheus.CounterVec
	settlements        *prometheus.CounterVec
	settlementDuration prometheus.Histogram
	decrementFailures  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_scans_total",
		Help: "Product code submissions by outcome.",
	}, []string{"outcome"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_settlements_total",
		Help: "Checkout settlements by outcome.",
	}, []string{"outcome"})
	settlementDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_settlement_duration_seconds",
		Help:    "Duration of checkout settlement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	decrementFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_inventory_decrement_failures_total",
		Help: "Post-settlement inventory decrements that failed.",
	})
	reg.MustRegister(scans, settlements, settlementDuration, decrementFailures)
	return &CheckoutMetrics{
		scans:              scans,
		settlements:        settlements,
		settlementDuration: settlementDuration,
		decrementFailures:  decrementFailures,
	}
}

// IncScan increments the scan counter for the given outcome.
func (c *CheckoutMetrics) IncScan(outcome string) {
	if c == nil || c.scans == nil {
		return
	}
	c.scans.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSettlement increments the settlement counter for the given outcome.
func (c *CheckoutMetrics) IncSettlement(outcome string) {
	if c == nil || c.settlements == nil {
		return
	}
	c.settlements.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSettlementDuration records how long a settlement took.
func (c *CheckoutMetrics) ObserveSettlementDuration(duration time.Duration) {
	if c == nil || c.settlementDuration == nil {
		return
	}
	c.settlementDuration.Observe(duration.Seconds())
}

// IncDecrementFailure counts an inventory decrement that could not be applied.
func (c *CheckoutMetrics) IncDecrementFailure() {
	if c == nil || c.decrementFailures == nil {
		return
	}
	c.decrementFailures.Inc()
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
