package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/cko-commerce/webhook-service/pkg/enums"
)

// CreateOrderInput captures the fields accepted when registering an order
// with the service. Payment keys are optional at creation time; checkout
// flows that obtain them later attach them with AttachPayment.
type CreateOrderInput struct {
	Number           string `json:"number" validate:"required"`
	Currency         string `json:"currency" validate:"required,len=3"`
	TotalCents       int64  `json:"total_cents" validate:"gte=0"`
	PaymentID        string `json:"payment_id,omitempty"`
	PaymentSessionID string `json:"payment_session_id,omitempty"`
}

// AttachPaymentInput binds gateway correlation keys to an existing order.
type AttachPaymentInput struct {
	OrderID          uuid.UUID `json:"-"`
	PaymentID        string    `json:"payment_id,omitempty"`
	PaymentSessionID string    `json:"payment_session_id,omitempty"`
}

// OrderDetail is the read model returned by the orders API: the order row
// plus its audit notes in chronological order.
type OrderDetail struct {
	ID                uuid.UUID         `json:"id"`
	Number            string            `json:"number"`
	Status            enums.OrderStatus `json:"status"`
	Currency          string            `json:"currency"`
	TotalCents        int64             `json:"total_cents"`
	PaymentID         string            `json:"payment_id,omitempty"`
	PaymentSessionID  string            `json:"payment_session_id,omitempty"`
	TransactionID     string            `json:"transaction_id,omitempty"`
	PaymentAuthorized bool              `json:"payment_authorized"`
	PaymentCaptured   bool              `json:"payment_captured"`
	PaymentVoided     bool              `json:"payment_voided"`
	PaymentRefunded   bool              `json:"payment_refunded"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Notes             []NoteDetail      `json:"notes"`
}

// NoteDetail is one audit entry on an order.
type NoteDetail struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
