package webhookqueue

import (
	"context"

	"github.com/cko-commerce/webhook-service/internal/reconcile"
	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/logger"
	"github.com/cko-commerce/webhook-service/pkg/metrics"
)

// Applier replays a webhook event against order state.
type Applier interface {
	Apply(ctx context.Context, event *reconcile.Event) error
}

// Drainer replays queued webhooks once their order becomes reachable.
type Drainer struct {
	queue   Repository
	applier Applier
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
}

// NewDrainer wires the queue drainer. metrics may be nil.
func NewDrainer(queue Repository, applier Applier, m *metrics.WebhookMetrics, logg *logger.Logger) *Drainer {
	return &Drainer{queue: queue, applier: applier, metrics: m, logg: logg}
}

// Drain replays every unprocessed row matching the order's correlation keys
// and returns how many were applied. A row that fails to apply stays queued:
// captures still waiting on authorization get another chance on the next
// drain, and the retention sweeper bounds everything else.
func (d *Drainer) Drain(ctx context.Context, order *models.Order) (int, error) {
	rows, err := d.queue.FindPendingFor(ctx, order)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	processed := 0
	for _, row := range rows {
		rowCtx := d.logg.WithFields(ctx, map[string]any{
			"queue_id":   row.ID,
			"event_type": row.WebhookType.String(),
		})

		event, err := reconcile.ParseEvent(row.WebhookData)
		if err != nil {
			d.logg.Error(rowCtx, "skipping queued webhook with undecodable body", err)
			d.countDrained(row, "undecodable")
			continue
		}

		// The stored body predates the order, so its metadata cannot name
		// it. Inject the id the handlers resolve by.
		event.Data.Metadata.OrderID = reconcile.FlexID(order.ID.String())

		if err := d.applier.Apply(rowCtx, event); err != nil {
			d.logg.Warn(rowCtx, "queued webhook not applied, leaving in queue")
			d.countDrained(row, "failed")
			continue
		}

		stamped, err := d.queue.MarkProcessed(rowCtx, row.ID)
		if err != nil {
			d.logg.Error(rowCtx, "marking queued webhook processed", err)
			continue
		}
		if !stamped {
			// another drain got here first
			continue
		}

		processed++
		d.countDrained(row, "processed")
	}

	return processed, nil
}

func (d *Drainer) countDrained(row models.PendingWebhook, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.IncDrained(row.WebhookType.String(), outcome)
}
