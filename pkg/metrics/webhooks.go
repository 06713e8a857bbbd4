package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records gateway webhook ingestion outcomes.
type WebhookMetrics struct {
	received *prometheus.CounterVec
	queued   *prometheus.CounterVec
	drained  *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook ingestion metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_received_total",
		Help: "Webhook deliveries received, by event type and outcome.",
	}, []string{"event_type", "outcome"})
	queued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_queued_total",
		Help: "Webhook deliveries stored for later replay, by event type.",
	}, []string{"event_type"})
	drained := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_drained_total",
		Help: "Queued webhook rows replayed, by event type and outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(received, queued, drained)
	return &WebhookMetrics{
		received: received,
		queued:   queued,
		drained:  drained,
	}
}

// IncReceived increments the received counter for an event type and outcome.
func (w *WebhookMetrics) IncReceived(eventType, outcome string) {
	if w == nil || w.received == nil {
		return
	}
	w.received.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncQueued increments the queued counter for an event type.
func (w *WebhookMetrics) IncQueued(eventType string) {
	if w == nil || w.queued == nil {
		return
	}
	w.queued.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDrained increments the drained counter for an event type and outcome.
func (w *WebhookMetrics) IncDrained(eventType, outcome string) {
	if w == nil || w.drained == nil {
		return
	}
	w.drained.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
