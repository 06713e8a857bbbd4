package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// WebhookAck is the body returned to the payment processor on accepted
// webhook deliveries.
type WebhookAck struct {
	Status string `json:"status"`
}

const (
	WebhookAckProcessed = "processed"
	WebhookAckQueued    = "queued"
)
