package webhookqueue

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/cko-commerce/webhook-service/internal/reconcile"
	"github.com/cko-commerce/webhook-service/pkg/db/models"
)

// Repository defines persistence for webhooks queued ahead of their order.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Save(ctx context.Context, event *reconcile.Event, raw json.RawMessage) (bool, error)
	FindPendingFor(ctx context.Context, order *models.Order) ([]models.PendingWebhook, error)
	MarkProcessed(ctx context.Context, id int64) (bool, error)
	PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeUnprocessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a queue repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Save stores a webhook for later replay. It reports false without error
// when the event is not eligible: only authorization and capture events can
// legitimately race order creation, and a payment id is mandatory.
func (r *repository) Save(ctx context.Context, event *reconcile.Event, raw json.RawMessage) (bool, error) {
	if !event.Type.IsQueueable() {
		return false, nil
	}
	if event.Data.ID == "" {
		return false, nil
	}

	row := &models.PendingWebhook{
		PaymentID:   event.Data.ID,
		WebhookType: event.Type,
		WebhookData: raw,
	}
	if ref := orderRef(event); ref != "" {
		row.OrderID = &ref
	}
	if sid := event.Data.PaymentSessionID; sid != "" {
		row.PaymentSessionID = &sid
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

// FindPendingFor returns unprocessed rows matching any of the order's
// correlation keys. Authorization events sort ahead of captures so replay
// respects the payment lifecycle; ties break on arrival order.
func (r *repository) FindPendingFor(ctx context.Context, order *models.Order) ([]models.PendingWebhook, error) {
	query := r.db.WithContext(ctx).Model(&models.PendingWebhook{})

	var matcher *gorm.DB
	addCond := func(cond *gorm.DB) {
		if matcher == nil {
			matcher = cond
			return
		}
		matcher = matcher.Or(cond)
	}

	if order.PaymentID != "" {
		addCond(r.db.Where("payment_id = ?", order.PaymentID))
	}
	if order.PaymentSessionID != "" {
		addCond(r.db.Where("payment_session_id = ?", order.PaymentSessionID))
	}
	addCond(r.db.Where("order_id IN ?", []string{order.ID.String(), order.Number}))

	var rows []models.PendingWebhook
	err := query.
		Where(matcher).
		Where("processed_at IS NULL").
		Order(`CASE webhook_type WHEN 'payment_approved' THEN 1 WHEN 'payment_captured' THEN 2 ELSE 3 END, created_at ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkProcessed stamps a row as replayed. The processed_at IS NULL guard
// makes the stamp first-writer-wins under concurrent drains.
func (r *repository) MarkProcessed(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingWebhook{}).
		Where("id = ? AND processed_at IS NULL", id).
		Update("processed_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed_at IS NOT NULL AND processed_at < ?", cutoff).
		Delete(&models.PendingWebhook{})
	return res.RowsAffected, res.Error
}

func (r *repository) PurgeUnprocessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed_at IS NULL AND created_at < ?", cutoff).
		Delete(&models.PendingWebhook{})
	return res.RowsAffected, res.Error
}

// orderRef picks the merchant-side order reference carried by the event, if
// any. Metadata wins over the payment reference.
func orderRef(event *reconcile.Event) string {
	if !event.Data.Metadata.OrderID.IsZero() {
		return event.Data.Metadata.OrderID.String()
	}
	return event.Data.Reference
}
