package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cko-commerce/webhook-service/api/responses"
	"github.com/cko-commerce/webhook-service/internal/reconcile"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
	"github.com/cko-commerce/webhook-service/pkg/metrics"
	"github.com/cko-commerce/webhook-service/pkg/types"
)

const signatureHeader = "Cko-Signature"

// ReconcileService applies a webhook event to order state.
type ReconcileService interface {
	Apply(ctx context.Context, event *reconcile.Event) error
}

// WebhookQueue stores events that arrived before their order.
type WebhookQueue interface {
	Save(ctx context.Context, event *reconcile.Event, raw json.RawMessage) (bool, error)
}

type signingKeySource interface {
	SigningKey() string
}

// CheckoutWebhook ingests payment gateway webhook deliveries. The response
// code is the contract with the gateway's retry loop: 2xx stops redelivery,
// anything else invites another attempt.
func CheckoutWebhook(svc ReconcileService, queue WebhookQueue, keys signingKeySource, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || queue == nil || keys == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if !validateCheckoutSignature(payload, keys.SigningKey(), r.Header.Get(signatureHeader)) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		event, err := reconcile.ParseEvent(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithEventType(ctx, event.Type.String())
		ctx = logg.WithPaymentID(ctx, event.Data.ID)

		applyErr := svc.Apply(ctx, event)
		switch {
		case applyErr == nil:
			m.IncReceived(event.Type.String(), "processed")
			logg.Info(ctx, "webhook processed")
			responses.WriteSuccess(w, types.WebhookAck{Status: types.WebhookAckProcessed})

		case errors.Is(applyErr, reconcile.ErrOrderNotFound):
			handleOrphan(ctx, queue, event, payload, m, logg, w)

		case errors.Is(applyErr, reconcile.ErrPaymentMismatch):
			m.IncReceived(event.Type.String(), "mismatch")
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeStateConflict, "webhook payment id does not match the order"))

		case errors.Is(applyErr, reconcile.ErrNotReady):
			// 400 asks the gateway to redeliver once authorization lands.
			m.IncReceived(event.Type.String(), "not_ready")
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "payment not yet authorized"))

		default:
			m.IncReceived(event.Type.String(), "failed")
			responses.WriteError(ctx, logg, w, applyErr)
		}
	}
}

// handleOrphan deals with an event whose order does not exist yet. Eligible
// events wait in the queue for the order to appear; everything else is
// rejected so the gateway retries against a (hopefully) created order.
func handleOrphan(ctx context.Context, queue WebhookQueue, event *reconcile.Event, payload []byte, m *metrics.WebhookMetrics, logg *logger.Logger, w http.ResponseWriter) {
	if !event.Type.IsQueueable() {
		m.IncReceived(event.Type.String(), "no_order")
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no order matches the webhook"))
		return
	}

	queued, err := queue.Save(ctx, event, payload)
	if err != nil {
		m.IncReceived(event.Type.String(), "queue_error")
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing webhook"))
		return
	}
	if !queued {
		m.IncReceived(event.Type.String(), "rejected")
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook not eligible for queueing"))
		return
	}

	m.IncReceived(event.Type.String(), "queued")
	m.IncQueued(event.Type.String())
	logg.Info(ctx, "webhook queued ahead of order creation")
	responses.WriteSuccess(w, types.WebhookAck{Status: types.WebhookAckQueued})
}

func validateCheckoutSignature(payload []byte, key, header string) bool {
	if header == "" || key == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
