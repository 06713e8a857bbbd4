package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cko-commerce/webhook-service/pkg/db/models"
	"github.com/cko-commerce/webhook-service/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  currency TEXT NOT NULL,
  total_cents INTEGER NOT NULL,
  payment_id TEXT,
  payment_session_id TEXT,
  transaction_id TEXT,
  payment_authorized INTEGER NOT NULL DEFAULT 0,
  payment_captured INTEGER NOT NULL DEFAULT 0,
  payment_voided INTEGER NOT NULL DEFAULT 0,
  payment_refunded INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	notesTable := `
CREATE TABLE IF NOT EXISTS order_notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL,
  note TEXT NOT NULL,
  created_at DATETIME
);`
	refundsTable := `
CREATE TABLE IF NOT EXISTS refunds (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  action_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);`

	for _, stmt := range []string{ordersTable, notesTable, refundsTable} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newTestOrder(number string) *models.Order {
	return &models.Order{
		ID:         uuid.New(),
		Number:     number,
		Status:     enums.OrderStatusPending,
		Currency:   "GBP",
		TotalCents: 12999,
	}
}

func TestOrdersRepoCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("1001")
	order.PaymentID = "pay_abc123"
	order.PaymentSessionID = "sid_xyz789"

	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Number, byID.Number)

	byNumber, err := repo.FindByNumber(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	byPayment, err := repo.FindByPaymentID(ctx, "pay_abc123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byPayment.ID)

	bySession, err := repo.FindByPaymentSessionID(ctx, "sid_xyz789")
	require.NoError(t, err)
	assert.Equal(t, order.ID, bySession.ID)

	_, err = repo.FindByPaymentID(ctx, "pay_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrdersRepoSavePersistsFlagChanges(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("1002")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	order.PaymentAuthorized = true
	order.Status = enums.OrderStatusOnHold
	order.TransactionID = "pay_abc123"
	require.NoError(t, repo.Save(ctx, order))

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaymentAuthorized)
	assert.Equal(t, enums.OrderStatusOnHold, reloaded.Status)
	assert.Equal(t, "pay_abc123", reloaded.TransactionID)
}

func TestOrdersRepoNotes(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("1003")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	require.NoError(t, repo.AddNote(ctx, &models.OrderNote{OrderID: order.ID, Note: "payment authorized"}))
	require.NoError(t, repo.AddNote(ctx, &models.OrderNote{OrderID: order.ID, Note: "payment captured"}))

	notes, err := repo.ListNotes(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "payment authorized", notes[0].Note)
	assert.Equal(t, "payment captured", notes[1].Note)
}

func TestOrdersRepoRefundTotals(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("1004")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	total, err := repo.TotalRefundedCents(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.CreateRefund(ctx, &models.Refund{
		ID: uuid.New(), OrderID: order.ID, ActionID: "act_1", AmountCents: 5000,
	}))
	require.NoError(t, repo.CreateRefund(ctx, &models.Refund{
		ID: uuid.New(), OrderID: order.ID, ActionID: "act_2", AmountCents: 2500,
	}))

	total, err = repo.TotalRefundedCents(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), total)

	refund, err := repo.FindRefundByAction(ctx, order.ID, "act_1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), refund.AmountCents)

	_, err = repo.FindRefundByAction(ctx, order.ID, "act_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
