package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/enums"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

// PendingDrainer replays any stored webhooks that match the order's
// correlation keys. Orders calls it after the moments an order first becomes
// reachable: creation and payment attachment.
type PendingDrainer interface {
	Drain(ctx context.Context, order *models.Order) (int, error)
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	AttachPayment(ctx context.Context, input AttachPaymentInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
}

type service struct {
	repo    Repository
	drainer PendingDrainer
	logg    *logger.Logger
}

// NewService wires the orders service. The drainer may be nil in tooling
// contexts that never accept webhooks.
func NewService(repo Repository, drainer PendingDrainer, logg *logger.Logger) Service {
	return &service{repo: repo, drainer: drainer, logg: logg}
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter ISO code")
	}
	if input.TotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_cents must not be negative")
	}

	if _, err := s.repo.FindByNumber(ctx, number); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order number")
	}

	order := &models.Order{
		Number:           number,
		Status:           enums.OrderStatusPending,
		Currency:         currency,
		TotalCents:       input.TotalCents,
		PaymentID:        strings.TrimSpace(input.PaymentID),
		PaymentSessionID: strings.TrimSpace(input.PaymentSessionID),
	}
	if _, err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	s.drainPending(ctx, order)
	return order, nil
}

func (s *service) AttachPayment(ctx context.Context, input AttachPaymentInput) (*models.Order, error) {
	paymentID := strings.TrimSpace(input.PaymentID)
	sessionID := strings.TrimSpace(input.PaymentSessionID)
	if paymentID == "" && sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_id or payment_session_id is required")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if paymentID != "" {
		order.PaymentID = paymentID
	}
	if sessionID != "" {
		order.PaymentSessionID = sessionID
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order payment keys")
	}

	s.drainPending(ctx, order)
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order notes")
	}

	detail := &OrderDetail{
		ID:                order.ID,
		Number:            order.Number,
		Status:            order.Status,
		Currency:          order.Currency,
		TotalCents:        order.TotalCents,
		PaymentID:         order.PaymentID,
		PaymentSessionID:  order.PaymentSessionID,
		TransactionID:     order.TransactionID,
		PaymentAuthorized: order.PaymentAuthorized,
		PaymentCaptured:   order.PaymentCaptured,
		PaymentVoided:     order.PaymentVoided,
		PaymentRefunded:   order.PaymentRefunded,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Notes:             make([]NoteDetail, 0, len(notes)),
	}
	for _, n := range notes {
		detail.Notes = append(detail.Notes, NoteDetail{Note: n.Note, CreatedAt: n.CreatedAt})
	}
	return detail, nil
}

// drainPending replays queued webhooks for the order. A drain failure is not
// a creation failure: the row exists, the sweeper keeps the queue bounded,
// and the gateway retries terminal events anyway.
func (s *service) drainPending(ctx context.Context, order *models.Order) {
	if s.drainer == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	n, err := s.drainer.Drain(ctx, order)
	if err != nil {
		s.logg.Error(ctx, "draining pending webhooks failed", err)
		return
	}
	if n > 0 {
		s.logg.Info(s.logg.WithField(ctx, "count", n), "drained pending webhooks")
	}
}
