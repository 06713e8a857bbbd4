package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWebhookMetricsCountsByEventType(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWebhookMetrics(reg)
	metrics.IncReceived("payment_captured", "processed")
	metrics.IncReceived("payment_captured", "processed")
	metrics.IncQueued("payment_approved")
	metrics.IncDrained("payment_approved", "processed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "webhook_received_total", "event_type", "payment_captured"); err != nil {
		t.Fatalf("fetch received: %v", err)
	} else if got != 2 {
		t.Fatalf("expected received=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "webhook_queued_total", "event_type", "payment_approved"); err != nil {
		t.Fatalf("fetch queued: %v", err)
	} else if got != 1 {
		t.Fatalf("expected queued=1, got %f", got)
	}
}

func TestWebhookMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *WebhookMetrics
	metrics.IncReceived("payment_voided", "failed")
	metrics.IncQueued("payment_captured")
	metrics.IncDrained("payment_captured", "failed")
}
