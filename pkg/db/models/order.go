package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cko-commerce/webhook-service/pkg/enums"
)

// Order is the slice of a commerce order this service owns: payment
// correlation keys, lifecycle status, and the idempotency flags recording
// which terminal payment facts have already been applied.
type Order struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number string            `gorm:"column:number;not null;uniqueIndex"`
	Status enums.OrderStatus `gorm:"column:status;not null"`

	Currency   string `gorm:"column:currency;not null"`
	TotalCents int64  `gorm:"column:total_cents;not null"`

	PaymentID        string `gorm:"column:payment_id;index"`
	PaymentSessionID string `gorm:"column:payment_session_id;index"`
	TransactionID    string `gorm:"column:transaction_id"`

	PaymentAuthorized bool `gorm:"column:payment_authorized;not null;default:false"`
	PaymentCaptured   bool `gorm:"column:payment_captured;not null;default:false"`
	PaymentVoided     bool `gorm:"column:payment_voided;not null;default:false"`
	PaymentRefunded   bool `gorm:"column:payment_refunded;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
