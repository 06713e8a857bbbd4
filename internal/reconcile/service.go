package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cko-commerce/webhook-service/internal/orders"
	"github.com/cko-commerce/webhook-service/pkg/checkoutcom"
	"github.com/cko-commerce/webhook-service/pkg/config"
	"github.com/cko-commerce/webhook-service/pkg/currency"
	"github.com/cko-commerce/webhook-service/pkg/db"
	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/enums"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

var (
	// ErrOrderNotFound means no order matched any of the event's
	// correlation keys. The caller decides whether the event is queueable.
	ErrOrderNotFound = errors.New("no order matches the webhook")

	// ErrPaymentMismatch means the resolved order is bound to a different
	// payment id than the event carries.
	ErrPaymentMismatch = errors.New("webhook payment id does not match the order")

	// ErrNotReady means the event arrived ahead of a prerequisite fact
	// (capture before authorization). The gateway retries these.
	ErrNotReady = errors.New("payment not yet authorized")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentLookup fetches payment details from the gateway. Cancellation
// events carry no order metadata, so the handler has to ask the gateway.
type PaymentLookup interface {
	GetPayment(ctx context.Context, paymentID string) (*checkoutcom.Payment, error)
}

// Service applies webhook events to order state.
type Service interface {
	Apply(ctx context.Context, event *Event) error
}

type service struct {
	repo     orders.Repository
	tx       txRunner
	payments PaymentLookup
	statuses config.StatusConfig
	logg     *logger.Logger
}

// NewService wires the reconciliation service. tx may be nil in tests; the
// service then applies events without a surrounding transaction.
func NewService(repo orders.Repository, tx txRunner, payments PaymentLookup, statuses config.StatusConfig, logg *logger.Logger) Service {
	return &service{repo: repo, tx: tx, payments: payments, statuses: statuses, logg: logg}
}

func (s *service) Apply(ctx context.Context, event *Event) error {
	if !event.Type.IsValid() {
		s.logg.Warn(s.logg.WithEventType(ctx, event.Type.String()), "ignoring unhandled webhook type")
		return nil
	}

	ctx = s.logg.WithEventType(ctx, event.Type.String())
	ctx = s.logg.WithPaymentID(ctx, event.Data.ID)

	run := func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.resolveOrder(ctx, repo, event)
		if err != nil {
			return err
		}
		if order.PaymentID != "" && event.Data.ID != "" && order.PaymentID != event.Data.ID {
			return ErrPaymentMismatch
		}

		return s.dispatch(s.logg.WithOrderID(ctx, order.ID.String()), repo, order, event)
	}

	if s.tx == nil {
		return run(nil)
	}
	return s.tx.WithTx(ctx, run)
}

// resolveOrder walks the event's correlation keys in priority order:
// metadata order id, then the payment reference, then the payment id and
// payment session id columns. Cancellations carry no metadata at all and
// need a gateway lookup.
func (s *service) resolveOrder(ctx context.Context, repo orders.Repository, event *Event) (*models.Order, error) {
	ref := event.Data.Metadata.OrderID.String()
	if ref == "" {
		ref = event.Data.Reference
	}
	if ref == "" && event.Type == enums.WebhookEventPaymentCanceled && s.payments != nil {
		payment, err := s.payments.GetPayment(ctx, event.Data.ID)
		if err != nil {
			return nil, err
		}
		ref = payment.OrderID()
	}

	if ref != "" {
		order, err := s.findByRef(ctx, repo, ref)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if event.Data.ID != "" {
		order, err := repo.FindByPaymentID(ctx, event.Data.ID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if event.Data.PaymentSessionID != "" {
		order, err := repo.FindByPaymentSessionID(ctx, event.Data.PaymentSessionID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, ErrOrderNotFound
}

// findByRef resolves an order reference that may be either the order's UUID
// or its human order number.
func (s *service) findByRef(ctx context.Context, repo orders.Repository, ref string) (*models.Order, error) {
	if id, err := uuid.Parse(ref); err == nil {
		order, err := repo.FindByID(ctx, id)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return repo.FindByNumber(ctx, ref)
}

func (s *service) dispatch(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	state := StateOf(order)
	if !state.Consistent() {
		s.logg.Warn(ctx, "order payment flags violate the capture-implies-authorization invariant")
	}

	switch event.Type {
	case enums.WebhookEventPaymentApproved:
		return s.applyAuthorized(ctx, repo, order, state, event)
	case enums.WebhookEventPaymentCaptured:
		return s.applyCaptured(ctx, repo, order, state, event)
	case enums.WebhookEventPaymentCaptureDeclined:
		return s.applyCaptureDeclined(ctx, repo, order, event)
	case enums.WebhookEventPaymentVoided:
		return s.applyVoided(ctx, repo, order, state, event)
	case enums.WebhookEventPaymentRefunded:
		return s.applyRefunded(ctx, repo, order, event)
	case enums.WebhookEventPaymentCanceled:
		return s.applyCanceled(ctx, repo, order)
	case enums.WebhookEventPaymentDeclined:
		return s.applyDeclined(ctx, repo, order, event)
	case enums.WebhookEventPaymentAuthFailed:
		return s.applyAuthFailed(ctx, repo, order, event)
	case enums.WebhookEventCardVerified:
		return s.applyCardVerified(ctx, repo, order, event)
	default:
		return nil
	}
}

func (s *service) applyAuthorized(ctx context.Context, repo orders.Repository, order *models.Order, state PaymentState, event *Event) error {
	// A captured order has already absorbed authorization.
	if state.Captured {
		return nil
	}

	authStatus := enums.OrderStatus(s.statuses.Authorized)
	if state.Authorized && order.Status == authStatus {
		return s.addNote(ctx, repo, order, "payment authorized webhook received")
	}

	order.TransactionID = event.Data.ActionID
	if order.PaymentID == "" {
		order.PaymentID = event.Data.ID
	}
	order.PaymentAuthorized = true
	order.Status = authStatus

	if err := s.addNote(ctx, repo, order, "payment authorized webhook received"); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyCaptured(ctx context.Context, repo orders.Repository, order *models.Order, state PaymentState, event *Event) error {
	if !state.Authorized {
		s.logg.Warn(ctx, "capture arrived before authorization")
		return ErrNotReady
	}
	if state.Captured {
		return s.addNote(ctx, repo, order, "payment captured webhook received")
	}

	if err := s.addNote(ctx, repo, order, "payment capture webhook received"); err != nil {
		return err
	}

	order.TransactionID = event.Data.ActionID
	order.PaymentCaptured = true
	order.Status = enums.OrderStatus(s.statuses.Captured)

	message := fmt.Sprintf("payment captured - action id: %s", event.Data.ActionID)
	if event.Data.Amount < order.TotalCents {
		message = fmt.Sprintf("payment partially captured (%s %s) - action id: %s",
			currency.FromMinorUnits(event.Data.Amount, order.Currency), order.Currency, event.Data.ActionID)
	}
	if err := s.addNote(ctx, repo, order, message); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyCaptureDeclined(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	message := fmt.Sprintf("payment capture declined: %s", event.Data.ResponseSummary)
	return s.addNote(ctx, repo, order, message)
}

func (s *service) applyVoided(ctx context.Context, repo orders.Repository, order *models.Order, state PaymentState, event *Event) error {
	if state.Voided {
		return s.addNote(ctx, repo, order, "payment voided webhook received")
	}

	if err := s.addNote(ctx, repo, order, "payment void webhook received"); err != nil {
		return err
	}

	order.TransactionID = event.Data.ActionID
	order.PaymentVoided = true
	order.Status = enums.OrderStatus(s.statuses.Void)

	if err := s.addNote(ctx, repo, order, fmt.Sprintf("payment voided - action id: %s", event.Data.ActionID)); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyRefunded(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	actionID := event.Data.ActionID

	// The last applied action id doubles as the refund replay guard.
	if actionID != "" && order.TransactionID == actionID {
		return nil
	}
	if _, err := repo.FindRefundByAction(ctx, order.ID, actionID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	refunded, err := repo.TotalRefundedCents(ctx, order.ID)
	if err != nil {
		return err
	}
	if refunded >= order.TotalCents && order.TotalCents > 0 {
		return s.addNote(ctx, repo, order, "payment refunded webhook received")
	}

	remaining := order.TotalCents - refunded
	if event.Data.Amount <= 0 || event.Data.Amount > remaining {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "refund amount exceeds the refundable balance")
	}

	if err := s.addNote(ctx, repo, order, "payment refund webhook received"); err != nil {
		return err
	}

	if err := repo.CreateRefund(ctx, &models.Refund{
		OrderID:     order.ID,
		ActionID:    actionID,
		AmountCents: event.Data.Amount,
	}); err != nil {
		// A concurrent delivery of the same refund loses the insert race;
		// treat it like the replay it is.
		if db.IsUniqueViolation(err, "idx_refunds_order_action") {
			return nil
		}
		return err
	}

	order.TransactionID = actionID
	order.PaymentRefunded = true

	message := fmt.Sprintf("payment partially refunded (%s %s) - action id: %s",
		currency.FromMinorUnits(event.Data.Amount, order.Currency), order.Currency, actionID)
	if refunded+event.Data.Amount >= order.TotalCents {
		message = fmt.Sprintf("payment fully refunded - action id: %s", actionID)
		order.Status = enums.OrderStatusRefunded
	}
	if err := s.addNote(ctx, repo, order, message); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyCanceled(ctx context.Context, repo orders.Repository, order *models.Order) error {
	order.PaymentVoided = true
	order.Status = enums.OrderStatusCancelled
	if err := s.addNote(ctx, repo, order, "payment cancelled webhook received"); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyDeclined(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	order.Status = enums.OrderStatusFailed
	message := fmt.Sprintf("payment declined: %s", event.Data.ResponseSummary)
	if err := s.addNote(ctx, repo, order, message); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyAuthFailed(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	order.Status = enums.OrderStatusFailed
	message := "payment authentication failed"
	if event.Data.ResponseSummary != "" {
		message = fmt.Sprintf("payment authentication failed: %s", event.Data.ResponseSummary)
	}
	if err := s.addNote(ctx, repo, order, message); err != nil {
		return err
	}
	return s.save(ctx, repo, order)
}

func (s *service) applyCardVerified(ctx context.Context, repo orders.Repository, order *models.Order, event *Event) error {
	if err := s.addNote(ctx, repo, order, "card verified webhook received"); err != nil {
		return err
	}
	order.TransactionID = event.Data.ActionID
	order.Status = enums.OrderStatus(s.statuses.Captured)
	return s.save(ctx, repo, order)
}

func (s *service) addNote(ctx context.Context, repo orders.Repository, order *models.Order, note string) error {
	return repo.AddNote(ctx, &models.OrderNote{OrderID: order.ID, Note: note})
}

func (s *service) save(ctx context.Context, repo orders.Repository, order *models.Order) error {
	return repo.Save(ctx, order)
}
