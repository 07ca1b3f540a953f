package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  invoice_number TEXT,
  order_type TEXT NOT NULL,
  third_party_provider TEXT,
  external_order_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  customer TEXT,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  table_id TEXT,
  table_name TEXT,
  server_id TEXT,
  captain_id TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax_breakdown TEXT,
  total_tax NUMERIC NOT NULL DEFAULT 0,
  discount_type TEXT NOT NULL DEFAULT 'none',
  discount_value NUMERIC NOT NULL DEFAULT 0,
  discount_reason TEXT,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  delivery_charge NUMERIC NOT NULL DEFAULT 0,
  packaging_charge NUMERIC NOT NULL DEFAULT 0,
  service_charge NUMERIC NOT NULL DEFAULT 0,
  tip NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  round_off NUMERIC NOT NULL DEFAULT 0,
  amount_due NUMERIC NOT NULL DEFAULT 0,
  payments TEXT,
  status_history TEXT,
  cancel_reason TEXT,
  cancelled_by TEXT,
  created_by TEXT,
  updated_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  dish_id TEXT NOT NULL,
  dish_name TEXT NOT NULL,
  variant_id TEXT,
  variant_name TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  add_ons TEXT,
  instructions TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  kot_generated INTEGER NOT NULL DEFAULT 0,
  item_total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	invoices := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL UNIQUE,
  order_number TEXT NOT NULL,
  customer_details TEXT,
  restaurant_details TEXT,
  items TEXT,
  tax_breakup TEXT,
  payment_details TEXT,
  payment_methods TEXT,
  additional_info TEXT,
  status TEXT NOT NULL DEFAULT 'issued',
  is_paid INTEGER NOT NULL DEFAULT 0,
  is_email_sent INTEGER NOT NULL DEFAULT 0,
  email_sent_at DATETIME,
  email_sent_to TEXT,
  is_printed INTEGER NOT NULL DEFAULT 0,
  printed_at DATETIME,
  print_count INTEGER NOT NULL DEFAULT 0,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(invoices).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, number string, created time.Time, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		OrderType:     enums.OrderTypeDineIn,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		Customer:      types.Customer{Name: "Walk In", Phone: "9000000000"},
		CustomerName:  "Walk In",
		CustomerPhone: "9000000000",
		Subtotal:      decimal.RequireFromString("100"),
		Total:         decimal.RequireFromString("105"),
		AmountDue:     decimal.RequireFromString("105"),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)

	item := &models.OrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		DishID:    uuid.New(),
		DishName:  "Masala Dosa",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("100"),
		ItemTotal: decimal.RequireFromString("100"),
		Status:    enums.OrderStatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepositoryFindByIDLoadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seeded := seedOrder(t, db, "ORD-260301-0001", time.Now().UTC(), nil)

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.OrderNumber, found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Masala Dosa", found.Items[0].DishName)
}

func TestRepositoryWithTxReboundWritesRollBack(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-260301-0099",
		OrderType:     enums.OrderTypeDineIn,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		CustomerName:  "Walk In",
		CustomerPhone: "9000000000",
	}

	tx := db.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, repo.WithTx(tx).Create(context.Background(), order))
	require.NoError(t, tx.Rollback().Error)

	_, err := repo.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListNewestFirstWithPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedOrder(t, db, "ORD-260301-0001", now.Add(-2*time.Hour), nil)
	seedOrder(t, db, "ORD-260301-0002", now.Add(-time.Hour), nil)
	seedOrder(t, db, "ORD-260301-0003", now, nil)

	page, total, err := repo.List(context.Background(), pagination.Params{Page: 1, Limit: 2}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "ORD-260301-0003", page[0].OrderNumber)
	assert.Equal(t, "ORD-260301-0002", page[1].OrderNumber)

	second, _, err := repo.List(context.Background(), pagination.Params{Page: 2, Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "ORD-260301-0001", second[0].OrderNumber)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedOrder(t, db, "ORD-260301-0001", now, func(o *models.Order) {
		o.Status = enums.OrderStatusCompleted
		o.OrderType = enums.OrderTypeTakeaway
		o.PaymentStatus = enums.PaymentStatusPaid
	})
	seedOrder(t, db, "ORD-260301-0002", now, nil)

	status := enums.OrderStatusCompleted
	page, total, err := repo.List(context.Background(), pagination.Params{Limit: 10}, ListFilters{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-260301-0001", page[0].OrderNumber)

	orderType := enums.OrderTypeTakeaway
	paid := enums.PaymentStatusPaid
	page, _, err = repo.List(context.Background(), pagination.Params{Limit: 10}, ListFilters{
		OrderType:     &orderType,
		PaymentStatus: &paid,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestRepositoryListSearch(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedOrder(t, db, "ORD-260301-0001", now, func(o *models.Order) {
		o.CustomerName = "Asha Rao"
		o.CustomerPhone = "9876543210"
	})
	seedOrder(t, db, "ORD-260301-0002", now, nil)

	page, _, err := repo.List(context.Background(), pagination.Params{Limit: 10}, ListFilters{Query: "asha"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Asha Rao", page[0].CustomerName)

	page, _, err = repo.List(context.Background(), pagination.Params{Limit: 10}, ListFilters{Query: "98765"})
	require.NoError(t, err)
	require.Len(t, page, 1)

	page, _, err = repo.List(context.Background(), pagination.Params{Limit: 10}, ListFilters{Query: "ord-260301-0002"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-260301-0002", page[0].OrderNumber)
}

func TestRepositoryReplaceItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seeded := seedOrder(t, db, "ORD-260301-0001", time.Now().UTC(), nil)

	err := repo.ReplaceItems(context.Background(), seeded.ID, []models.OrderItem{
		{
			ID:        uuid.New(),
			OrderID:   seeded.ID,
			DishID:    uuid.New(),
			DishName:  "Idli",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("40"),
			ItemTotal: decimal.RequireFromString("80"),
			Status:    enums.OrderStatusPending,
		},
	})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Idli", found.Items[0].DishName)
}
