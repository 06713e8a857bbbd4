package enums

import "fmt"

// WebhookEventType identifies a payment lifecycle event delivered by the
// processor.
type WebhookEventType string

const (
	WebhookEventPaymentApproved        WebhookEventType = "payment_approved"
	WebhookEventPaymentCaptured        WebhookEventType = "payment_captured"
	WebhookEventPaymentCaptureDeclined WebhookEventType = "payment_capture_declined"
	WebhookEventPaymentVoided          WebhookEventType = "payment_voided"
	WebhookEventPaymentRefunded        WebhookEventType = "payment_refunded"
	WebhookEventPaymentCanceled        WebhookEventType = "payment_canceled"
	WebhookEventPaymentDeclined        WebhookEventType = "payment_declined"
	WebhookEventPaymentAuthFailed      WebhookEventType = "payment_authentication_failed"
	WebhookEventCardVerified           WebhookEventType = "card_verified"
)

var validWebhookEventTypes = []WebhookEventType{
	WebhookEventPaymentApproved,
	WebhookEventPaymentCaptured,
	WebhookEventPaymentCaptureDeclined,
	WebhookEventPaymentVoided,
	WebhookEventPaymentRefunded,
	WebhookEventPaymentCanceled,
	WebhookEventPaymentDeclined,
	WebhookEventPaymentAuthFailed,
	WebhookEventCardVerified,
}

// queueableWebhookEventTypes are the only types that can legitimately arrive
// before their order exists and are therefore allowed into the pending queue.
var queueableWebhookEventTypes = []WebhookEventType{
	WebhookEventPaymentApproved,
	WebhookEventPaymentCaptured,
}

// String implements fmt.Stringer.
func (w WebhookEventType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WebhookEventType.
func (w WebhookEventType) IsValid() bool {
	for _, candidate := range validWebhookEventTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsQueueable reports whether the event type may be queued ahead of order
// creation.
func (w WebhookEventType) IsQueueable() bool {
	for _, candidate := range queueableWebhookEventTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWebhookEventType converts raw input into a WebhookEventType.
func ParseWebhookEventType(value string) (WebhookEventType, error) {
	for _, candidate := range validWebhookEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook event type %q", value)
}
