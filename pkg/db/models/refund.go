package models

import (
	"time"

	"github.com/google/uuid"
)

// Refund records one refund action against an order. Amounts are minor
// units; the action id is the processor's identifier for the refund action
// and doubles as the replay guard.
type Refund struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ActionID    string    `gorm:"column:action_id;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Refund) TableName() string { return "refunds" }
