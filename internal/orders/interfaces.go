package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cko-commerce/webhook-service/pkg/db/models"
)

// Repository defines persistence operations for orders and their
// payment-related satellites.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	FindByPaymentSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	AddNote(ctx context.Context, note *models.OrderNote) error
	CreateRefund(ctx context.Context, refund *models.Refund) error
	FindRefundByAction(ctx context.Context, orderID uuid.UUID, actionID string) (*models.Refund, error)
	TotalRefundedCents(ctx context.Context, orderID uuid.UUID) (int64, error)
	ListNotes(ctx context.Context, orderID uuid.UUID) ([]models.OrderNote, error)
}
