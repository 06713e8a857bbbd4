package reconcile

import (
	"testing"

	"github.com/google/uuid"

	"github.com/cko-commerce/webhook-service/pkg/db/models"
)

func TestStateOfReadsOrderFlags(t *testing.T) {
	order := &models.Order{
		ID:                uuid.New(),
		PaymentAuthorized: true,
		PaymentCaptured:   true,
		PaymentRefunded:   true,
	}

	state := StateOf(order)
	if !state.Authorized || !state.Captured || !state.Refunded {
		t.Fatalf("snapshot lost flags: %+v", state)
	}
	if state.Voided {
		t.Fatalf("voided must reflect the order, got %+v", state)
	}
}

func TestPaymentStateConsistent(t *testing.T) {
	cases := []struct {
		name  string
		state PaymentState
		want  bool
	}{
		{"empty", PaymentState{}, true},
		{"authorized only", PaymentState{Authorized: true}, true},
		{"authorized and captured", PaymentState{Authorized: true, Captured: true}, true},
		{"captured without authorization", PaymentState{Captured: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Consistent(); got != tc.want {
				t.Fatalf("Consistent() = %v, want %v", got, tc.want)
			}
		})
	}
}
