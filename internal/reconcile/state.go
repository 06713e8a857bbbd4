package reconcile

import "github.com/cko-commerce/webhook-service/pkg/db/models"

// PaymentState is the snapshot of which terminal payment facts an order has
// already absorbed. The boolean flags are the idempotency mechanism: a
// transition whose flag is already set is a redelivery, not a new fact.
type PaymentState struct {
	Authorized bool
	Captured   bool
	Voided     bool
	Refunded   bool
}

// StateOf reads the payment state recorded on an order. Handlers consult
// this snapshot, loaded once per reconciliation, for their idempotency
// guards rather than re-reading the order's flags piecemeal.
func StateOf(order *models.Order) PaymentState {
	return PaymentState{
		Authorized: order.PaymentAuthorized,
		Captured:   order.PaymentCaptured,
		Voided:     order.PaymentVoided,
		Refunded:   order.PaymentRefunded,
	}
}

// Consistent reports whether the recorded flags respect the payment
// lifecycle: a capture cannot exist without an authorization.
func (p PaymentState) Consistent() bool {
	return !p.Captured || p.Authorized
}
