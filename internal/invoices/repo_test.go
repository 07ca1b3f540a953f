package invoices

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

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

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
	require.NoError(t, db.Exec(invoices).Error)
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, number string, created time.Time, mutate func(*models.Invoice)) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		OrderID:       uuid.New(),
		OrderNumber:   "ORD-260301-0001",
		Status:        enums.InvoiceStatusIssued,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if mutate != nil {
		mutate(invoice)
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestInvoicesRepositoryFindByOrder(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedInvoice(t, db, "INV-260301-0001", time.Now().UTC(), nil)
	seedInvoice(t, db, "INV-260301-0002", time.Now().UTC(), nil)

	found, err := repo.FindByOrder(ctx, seeded.OrderID)
	require.NoError(t, err)
	assert.Equal(t, seeded.InvoiceNumber, found.InvoiceNumber)

	_, err = repo.FindByOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInvoicesRepositoryListNewestFirst(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedInvoice(t, db, "INV-260301-0001", now.Add(-2*time.Hour), nil)
	seedInvoice(t, db, "INV-260301-0002", now.Add(-time.Hour), nil)
	seedInvoice(t, db, "INV-260301-0003", now, nil)

	result, total, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 2}, ListFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, result, 2)
	assert.Equal(t, "INV-260301-0003", result[0].InvoiceNumber)
	assert.Equal(t, "INV-260301-0002", result[1].InvoiceNumber)
}

func TestInvoicesRepositoryListFilters(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedInvoice(t, db, "INV-260301-0001", now, func(i *models.Invoice) {
		i.Status = enums.InvoiceStatusPaid
	})
	seedInvoice(t, db, "INV-260301-0002", now, func(i *models.Invoice) {
		i.OrderNumber = "ORD-260301-0042"
	})

	paid := enums.InvoiceStatusPaid
	result, total, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &paid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, result, 1)
	assert.Equal(t, "INV-260301-0001", result[0].InvoiceNumber)

	result, total, err = repo.List(ctx, pagination.Params{}, ListFilters{Query: "ord-260301-0042"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, result, 1)
	assert.Equal(t, "INV-260301-0002", result[0].InvoiceNumber)
}

func TestInvoicesRepositorySaveRoundTripsSnapshot(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedInvoice(t, db, "INV-260301-0001", time.Now().UTC(), func(i *models.Invoice) {
		i.CustomerDetails = types.Customer{Name: "Asha", Phone: "9876500000"}
		i.TaxBreakup = types.TaxLines{{TaxName: "CGST", TaxRate: decimal.RequireFromString("2.5"), TaxAmount: decimal.RequireFromString("5.50")}}
		i.PaymentDetails = types.PaymentDetails{GrandTotal: decimal.RequireFromString("231")}
	})

	seeded.IsPrinted = true
	seeded.PrintCount = 1
	require.NoError(t, repo.Save(ctx, seeded))

	found, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPrinted)
	assert.Equal(t, 1, found.PrintCount)
	assert.Equal(t, "Asha", found.CustomerDetails.Name)
	require.Len(t, found.TaxBreakup, 1)
	assert.True(t, found.TaxBreakup[0].TaxAmount.Equal(decimal.RequireFromString("5.50")))
	assert.True(t, found.PaymentDetails.GrandTotal.Equal(decimal.RequireFromString("231")))
}
