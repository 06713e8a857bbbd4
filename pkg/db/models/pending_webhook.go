package models

import (
	"encoding/json"
	"time"

	"github.com/cko-commerce/webhook-service/pkg/enums"
)

// PendingWebhook holds a webhook that arrived before its order existed.
// Only payment_approved and payment_captured can legitimately race order
// creation, so only those two types are ever stored. A row with a non-null
// processed_at is never mutated again.
type PendingWebhook struct {
	ID               int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	PaymentID        string                 `gorm:"column:payment_id;not null;index"`
	OrderID          *string                `gorm:"column:order_id;index"`
	PaymentSessionID *string                `gorm:"column:payment_session_id;index"`
	WebhookType      enums.WebhookEventType `gorm:"column:webhook_type;not null"`
	WebhookData      json.RawMessage        `gorm:"column:webhook_data;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;index;autoCreateTime"`
	ProcessedAt      *time.Time             `gorm:"column:processed_at;index"`
}

func (PendingWebhook) TableName() string { return "pending_webhooks" }
