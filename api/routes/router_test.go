package routes

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	internalorders "github.com/cko-commerce/webhook-service/internal/orders"
	"github.com/cko-commerce/webhook-service/internal/reconcile"
	"github.com/cko-commerce/webhook-service/pkg/config"
	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

type routerOrdersService struct{}

func (routerOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Number: input.Number}, nil
}

func (routerOrdersService) AttachPayment(ctx context.Context, input internalorders.AttachPaymentInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID}, nil
}

func (routerOrdersService) Get(ctx context.Context, id uuid.UUID) (*internalorders.OrderDetail, error) {
	return &internalorders.OrderDetail{ID: id}, nil
}

type routerReconciler struct{}

func (routerReconciler) Apply(ctx context.Context, event *reconcile.Event) error { return nil }

type routerQueue struct{}

func (routerQueue) Save(ctx context.Context, event *reconcile.Event, raw json.RawMessage) (bool, error) {
	return true, nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Checkout.SecretKey = "sk_test_signing"
	cfg.Checkout.AccountType = "abc"
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, okPinger{}, routerOrdersService{}, routerReconciler{}, routerQueue{}, nil, nil)
}

func TestRouterHealthProbes(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestRouterWebhookRouteIsWired(t *testing.T) {
	router := testRouter()

	body, _ := json.Marshal(map[string]any{
		"type": "payment_approved",
		"data": map[string]any{"id": "pay_1"},
	})
	mac := hmac.New(sha256.New, []byte("sk_test_signing"))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/checkout", bytes.NewReader(body))
	req.Header.Set("Cko-Signature", hex.EncodeToString(mac.Sum(nil)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouterWebhookRejectsUnsigned(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/checkout", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRouterOrdersRoutes(t *testing.T) {
	router := testRouter()

	body, _ := json.Marshal(map[string]any{"number": "1001", "currency": "GBP"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
}
