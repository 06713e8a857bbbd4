package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/cko-commerce/webhook-service/pkg/errors"
	"github.com/cko-commerce/webhook-service/pkg/enums"
)

// Event is the decoded body of a gateway webhook delivery.
type Event struct {
	ID        string                 `json:"id"`
	Type      enums.WebhookEventType `json:"type"`
	CreatedOn string                 `json:"created_on"`
	Data      EventData              `json:"data"`
}

// EventData carries the payment facts inside a webhook event. Amounts are
// integer minor units as delivered by the gateway.
type EventData struct {
	ID               string   `json:"id"`
	ActionID         string   `json:"action_id"`
	Amount           int64    `json:"amount"`
	Currency         string   `json:"currency"`
	Reference        string   `json:"reference"`
	ResponseSummary  string   `json:"response_summary"`
	PaymentSessionID string   `json:"payment_session_id"`
	Metadata         Metadata `json:"metadata"`
}

// Metadata is the merchant-supplied metadata echoed back by the gateway.
type Metadata struct {
	OrderID FlexID `json:"order_id"`
}

// FlexID tolerates the order id arriving as either a JSON string or a
// number. Older checkout integrations sent numeric ids.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("order_id must be a string or number: %w", err)
	}
	if i, err := num.Int64(); err == nil {
		*f = FlexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexID(num.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// IsZero reports whether no order id was supplied.
func (f FlexID) IsZero() bool { return strings.TrimSpace(string(f)) == "" }

// ParseEvent decodes and minimally validates a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook body")
	}
	if event.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook type is missing")
	}
	if event.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook data.id is missing")
	}
	return &event, nil
}
