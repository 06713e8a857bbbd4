package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderNote is an append-only audit trail entry. Every accepted webhook
// transition writes one, including redelivered events that no-op.
type OrderNote struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Note      string    `gorm:"column:note;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderNote) TableName() string { return "order_notes" }
