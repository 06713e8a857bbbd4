// Package checkoutcom is a thin client for the slice of the Checkout.com
// REST API this service calls: payment detail lookups used to resolve
// orders for cancellation webhooks that omit their order id.
package checkoutcom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cko-commerce/webhook-service/pkg/config"
	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("checkout secret key is required")
	errLoggerRequired    = errors.New("checkout logger is required")
)

// Payment is the subset of the payment details response the service reads.
type Payment struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata"`
}

// OrderID returns the order id carried in the payment's metadata, if any.
func (p *Payment) OrderID() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Metadata["order_id"])
}

// Client wraps the processor API with centralized auth, logging, and error
// mapping. Calls use a bounded timeout and are never retried here; retry is
// the processor's webhook redelivery.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	logger     *logger.Logger
}

// NewClient validates the credentials and builds the API wrapper.
func NewClient(ctx context.Context, cfg config.CheckoutConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errSecretKeyRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: cfg.AuthorizationHeader(),
		logger:     logg,
	}

	logg.Info(ctx, "checkout client initialized")
	return c, nil
}

// GetPayment fetches payment details for the given payment id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	url := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)
	c.log(ctx, "request", "get_payment", map[string]any{"payment_id": paymentID})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment request")
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "get_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment details")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read payment response")
	}

	if resp.StatusCode != http.StatusOK {
		c.log(ctx, "error", "get_payment", map[string]any{
			"payment_id": paymentID,
			"status":     resp.StatusCode,
		})
		return nil, c.mapStatusError(resp.StatusCode, paymentID)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment response")
	}

	c.log(ctx, "response", "get_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return &payment, nil
}

func (c *Client) mapStatusError(status int, paymentID string) error {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment %s not found", paymentID))
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "processor rejected credentials")
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("processor returned status %d", status))
	}
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	entry := map[string]any{"phase": phase, "operation": operation}
	for k, v := range fields {
		entry[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, entry), "checkout api call")
}
