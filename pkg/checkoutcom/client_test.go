package checkoutcom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cko-commerce/webhook-service/pkg/config"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.CheckoutConfig{
		SecretKey:   "sk_test_123",
		AccountType: "nas",
		BaseURL:     baseURL,
		HTTPTimeout: 5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client
}

func TestGetPaymentResolvesOrderID(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/payments/pay_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_123","status":"Voided","amount":1000,"currency":"USD","metadata":{"order_id":"ord-55"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payment, err := client.GetPayment(context.Background(), "pay_123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "pay_123", payment.ID)
	assert.Equal(t, "ord-55", payment.OrderID())
}

func TestGetPaymentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetPayment(context.Background(), "pay_missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetPaymentRequiresID(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	_, err := client.GetPayment(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(context.Background(), config.CheckoutConfig{}, logger.New(logger.Options{ServiceName: "test"}))
	assert.ErrorIs(t, err, errSecretKeyRequired)

	_, err = NewClient(context.Background(), config.CheckoutConfig{SecretKey: "sk"}, nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}
