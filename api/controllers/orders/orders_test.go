package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internalorders "github.com/cko-commerce/webhook-service/internal/orders"
	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/enums"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

type stubOrdersService struct {
	created  *internalorders.CreateOrderInput
	attached *internalorders.AttachPaymentInput
	err      error
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: uuid.New(), Number: input.Number, Status: enums.OrderStatusPending}, nil
}

func (s *stubOrdersService) AttachPayment(ctx context.Context, input internalorders.AttachPaymentInput) (*models.Order, error) {
	s.attached = &input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: input.OrderID, PaymentID: input.PaymentID}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*internalorders.OrderDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.OrderDetail{ID: id, Number: "1001"}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newRouter(svc internalorders.Service) http.Handler {
	r := chi.NewRouter()
	logg := testLogger()
	r.Post("/orders", Create(svc, logg))
	r.Post("/orders/{orderID}/payment", AttachPayment(svc, logg))
	r.Get("/orders/{orderID}", Get(svc, logg))
	return r
}

func TestCreateOrderReturns201(t *testing.T) {
	svc := &stubOrdersService{}
	router := newRouter(svc)

	body, _ := json.Marshal(map[string]any{"number": "1001", "currency": "GBP", "total_cents": 4599})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if svc.created == nil || svc.created.Number != "1001" {
		t.Fatalf("unexpected input: %+v", svc.created)
	}
}

func TestCreateOrderRejectsBadBody(t *testing.T) {
	router := newRouter(&stubOrdersService{})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateOrderPropagatesServiceErrors(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")}
	router := newRouter(svc)

	body, _ := json.Marshal(map[string]any{"number": "1001", "currency": "GBP"})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAttachPaymentParsesOrderID(t *testing.T) {
	svc := &stubOrdersService{}
	router := newRouter(svc)
	orderID := uuid.New()

	body, _ := json.Marshal(map[string]any{"payment_id": "pay_123"})
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/payment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.attached == nil || svc.attached.OrderID != orderID || svc.attached.PaymentID != "pay_123" {
		t.Fatalf("unexpected input: %+v", svc.attached)
	}
}

func TestAttachPaymentRejectsMalformedID(t *testing.T) {
	router := newRouter(&stubOrdersService{})

	req := httptest.NewRequest(http.MethodPost, "/orders/not-a-uuid/payment", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
