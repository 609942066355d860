package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/angelmondragon/shophub/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  session_id TEXT NOT NULL,
  user_email TEXT,
  status TEXT NOT NULL DEFAULT 'confirmed',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  transaction_id TEXT,
  items TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  coupon_code TEXT,
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  shipping NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  ordered_at DATETIME NOT NULL,
  estimated_delivery DATETIME NOT NULL,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func testAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
		Country:  "IN",
	}
}

func newTestOrder(sessionID string, createdAt time.Time, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		Number:        "ORD-" + uuid.NewString(),
		SessionID:     sessionID,
		Status:        status,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusApproved,
		Items: []models.OrderItem{
			{ProductID: 1, Title: "Backpack", Category: "men's clothing", Price: decimal.RequireFromString("109.95"), Quantity: 1},
		},
		ShippingAddress:   testAddress(),
		Subtotal:          decimal.RequireFromString("109.95"),
		Tax:               decimal.RequireFromString("19.79"),
		Shipping:          decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.RequireFromString("129.74"),
		OrderedAt:         createdAt,
		EstimatedDelivery: createdAt.Add(7 * 24 * time.Hour),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := newTestOrder("session-a", at, enums.OrderStatusConfirmed)
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, "session-a", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Number, found.Number)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Backpack", found.Items[0].Title)
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("109.95")))
	assert.Equal(t, "Bengaluru", found.ShippingAddress.City)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("129.74")))

	_, err = repo.FindByID(ctx, "session-b", order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListBySessionPagesNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		o := newTestOrder("session-a", base.Add(time.Duration(i)*time.Minute), enums.OrderStatusConfirmed)
		_, err := repo.Create(ctx, o)
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := repo.Create(ctx, newTestOrder("session-b", base, enums.OrderStatusConfirmed))
	require.NoError(t, err)

	first, cursor, err := repo.ListBySession(ctx, "session-a", ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)
	require.NotNil(t, cursor)
	assert.Equal(t, ids[1], cursor.ID)

	second, cursor, err := repo.ListBySession(ctx, "session-a", ListQuery{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, ids[0], second[0].ID)
	assert.Nil(t, cursor)
}

func TestRepositoryMarkCancelled(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	confirmed := newTestOrder("session-a", at, enums.OrderStatusConfirmed)
	delivered := newTestOrder("session-a", at.Add(time.Minute), enums.OrderStatusDelivered)
	_, err := repo.Create(ctx, confirmed)
	require.NoError(t, err)
	_, err = repo.Create(ctx, delivered)
	require.NoError(t, err)

	changed, err := repo.MarkCancelled(ctx, "session-a", confirmed.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkCancelled(ctx, "session-a", confirmed.ID, at.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.MarkCancelled(ctx, "session-a", delivered.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	found, err := repo.FindByID(ctx, "session-a", confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, found.Status)
	require.NotNil(t, found.CancelledAt)
}
