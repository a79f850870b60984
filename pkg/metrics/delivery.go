package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics records per-channel delivery attempts and latency.
type DeliveryMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDeliveryMetrics registers the delivery metrics on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_attempts_total",
		Help: "Channel delivery attempts by outcome.",
	}, []string{"channel", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_duration_seconds",
		Help:    "Duration of channel delivery attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	reg.MustRegister(attempts, duration)
	return &DeliveryMetrics{
		attempts: attempts,
		duration: duration,
	}
}

// ObserveAttempt records one finished delivery attempt.
func (d *DeliveryMetrics) ObserveAttempt(channel string, success bool, elapsed time.Duration) {
	if d == nil || d.attempts == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	d.attempts.WithLabelValues(normalizeLabel(channel), outcome).Inc()
	d.duration.WithLabelValues(normalizeLabel(channel)).Observe(elapsed.Seconds())
}
