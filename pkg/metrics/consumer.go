package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics makes the swallow-and-log policy of event handlers
// observable: tests and dashboards can assert how many events failed instead
// of scraping log lines.
type ConsumerMetrics struct {
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	skipped   *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_processed_total",
		Help: "Domain events handled successfully.",
	}, []string{"consumer"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_failed_total",
		Help: "Domain events dropped after a handling failure.",
	}, []string{"consumer"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_skipped_total",
		Help: "Domain events skipped as duplicates or irrelevant.",
	}, []string{"consumer"})
	reg.MustRegister(processed, failed, skipped)
	return &ConsumerMetrics{
		processed: processed,
		failed:    failed,
		skipped:   skipped,
	}
}

// IncProcessed increments the success counter for the named consumer.
func (c *ConsumerMetrics) IncProcessed(consumer string) {
	if c == nil || c.processed == nil {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(consumer)).Inc()
}

// IncFailed increments the failure counter for the named consumer.
func (c *ConsumerMetrics) IncFailed(consumer string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(consumer)).Inc()
}

// IncSkipped increments the skip counter for the named consumer.
func (c *ConsumerMetrics) IncSkipped(consumer string) {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.WithLabelValues(normalizeLabel(consumer)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
