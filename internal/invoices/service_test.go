package invoices

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters orders.ListFilters) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrdersRepo) Save(ctx context.Context, order *models.Order) error {
	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

func (s *stubOrdersRepo) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	return nil
}

func (s *stubOrdersRepo) UpdateItemsKOTFlag(ctx context.Context, itemIDs []uuid.UUID, generated bool) error {
	return nil
}

type stubInvoicesRepo struct {
	invoices map[uuid.UUID]*models.Invoice
}

func newStubInvoicesRepo() *stubInvoicesRepo {
	return &stubInvoicesRepo{invoices: map[uuid.UUID]*models.Invoice{}}
}

func (s *stubInvoicesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInvoicesRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	stored := *invoice
	s.invoices[invoice.ID] = &stored
	return nil
}

func (s *stubInvoicesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, ok := s.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (s *stubInvoicesRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	for _, invoice := range s.invoices {
		if invoice.OrderID == orderID {
			copied := *invoice
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInvoicesRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Invoice, int64, error) {
	var result []models.Invoice
	for _, invoice := range s.invoices {
		result = append(result, *invoice)
	}
	return result, int64(len(result)), nil
}

func (s *stubInvoicesRepo) Save(ctx context.Context, invoice *models.Invoice) error {
	stored := *invoice
	s.invoices[invoice.ID] = &stored
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubNumberSource struct {
	next int
}

func (s *stubNumberSource) InvoiceNumber(ctx context.Context) (string, error) {
	s.next++
	return "INV-260301-000" + string(rune('0'+s.next)), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testRestaurant() types.RestaurantDetails {
	return types.RestaurantDetails{
		Name:    "Spice Route",
		Address: "12 MG Road",
		City:    "Bengaluru",
		Phone:   "08012345678",
		TaxID:   "29ABCDE1234F1Z5",
	}
}

func newTestService(t *testing.T, repo Repository, ordersRepo orders.Repository) Service {
	t.Helper()
	svc, err := NewService(repo, ordersRepo, stubTxRunner{}, &stubNumberSource{}, testRestaurant(), nil, testLogger())
	require.NoError(t, err)
	return svc
}

func seedServedOrder(repo *stubOrdersRepo) *models.Order {
	variant := "Large"
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-260301-0001",
		OrderType:     enums.OrderTypeDineIn,
		Status:        enums.OrderStatusServed,
		PaymentStatus: enums.PaymentStatusPaid,
		Customer:      types.Customer{Name: "Asha Rao", Phone: "9876543210"},
		CustomerName:  "Asha Rao",
		CustomerPhone: "9876543210",
		Items: []models.OrderItem{
			{
				ID:          uuid.New(),
				DishID:      uuid.New(),
				DishName:    "Paneer Tikka",
				VariantName: &variant,
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("100"),
				AddOns:      types.AddOns{{Name: "extra cheese", Price: decimal.RequireFromString("10")}},
				ItemTotal:   decimal.RequireFromString("220"),
			},
			{
				ID:        uuid.New(),
				DishID:    uuid.New(),
				DishName:  "Masala Chai",
				Quantity:  1,
				UnitPrice: decimal.RequireFromString("20"),
				ItemTotal: decimal.RequireFromString("20"),
			},
		},
		Subtotal:  decimal.RequireFromString("240"),
		TotalTax:  decimal.RequireFromString("12"),
		TaxBreakdown: types.TaxLines{
			{TaxName: "CGST", TaxRate: decimal.RequireFromString("2.5"), TaxAmount: decimal.RequireFromString("6")},
			{TaxName: "SGST", TaxRate: decimal.RequireFromString("2.5"), TaxAmount: decimal.RequireFromString("6")},
		},
		Total:     decimal.RequireFromString("252"),
		AmountDue: decimal.RequireFromString("252"),
		Payments: types.Payments{
			{Method: "cash", Amount: decimal.RequireFromString("300")},
		},
	}
	stored := *order
	repo.orders[order.ID] = &stored
	return order
}

func TestServiceCreateFreezesOrderSnapshot(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	invoicesRepo := newStubInvoicesRepo()
	svc := newTestService(t, invoicesRepo, ordersRepo)

	order := seedServedOrder(ordersRepo)

	invoice, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	assert.Equal(t, "INV-260301-0001", invoice.InvoiceNumber)
	assert.Equal(t, order.OrderNumber, invoice.OrderNumber)
	assert.Equal(t, "Spice Route", invoice.RestaurantDetails.Name)
	assert.Equal(t, "Asha Rao", invoice.CustomerDetails.Name)

	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Paneer Tikka - Large (extra cheese)", invoice.Items[0])
	assert.Equal(t, "Masala Chai", invoice.Items[1])

	assert.True(t, invoice.PaymentDetails.GrandTotal.Equal(decimal.RequireFromString("252")))
	assert.True(t, invoice.PaymentDetails.AmountPaid.Equal(decimal.RequireFromString("300")))
	assert.True(t, invoice.PaymentDetails.ChangeReturned.Equal(decimal.RequireFromString("48")))
	assert.True(t, invoice.PaymentDetails.OutstandingAmount.IsZero())
	assert.Equal(t, []string{"cash"}, []string(invoice.PaymentMethods))

	assert.Equal(t, enums.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.IsPaid)

	// order carries the invoice number back-link
	linked := ordersRepo.orders[order.ID]
	require.NotNil(t, linked.InvoiceNumber)
	assert.Equal(t, invoice.InvoiceNumber, *linked.InvoiceNumber)
}

func TestServiceCreateUnpaidOrderIssuesUnpaidInvoice(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	svc := newTestService(t, newStubInvoicesRepo(), ordersRepo)

	order := seedServedOrder(ordersRepo)
	stored := ordersRepo.orders[order.ID]
	stored.PaymentStatus = enums.PaymentStatusPartiallyPaid
	stored.Payments = types.Payments{{Method: "upi", Amount: decimal.RequireFromString("100")}}

	invoice, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	assert.Equal(t, enums.InvoiceStatusIssued, invoice.Status)
	assert.False(t, invoice.IsPaid)
	assert.True(t, invoice.PaymentDetails.OutstandingAmount.Equal(decimal.RequireFromString("152")))
	assert.True(t, invoice.PaymentDetails.ChangeReturned.IsZero())
}

func TestServiceCreateIsSingletonPerOrder(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	svc := newTestService(t, newStubInvoicesRepo(), ordersRepo)

	order := seedServedOrder(ordersRepo)

	_, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "invoice already exists for this order", typed.Message())
}

func TestServiceCreateRejectsCancelledOrder(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	svc := newTestService(t, newStubInvoicesRepo(), ordersRepo)

	order := seedServedOrder(ordersRepo)
	ordersRepo.orders[order.ID].Status = enums.OrderStatusCancelled

	_, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestServiceCreateOrderNotFound(t *testing.T) {
	svc := newTestService(t, newStubInvoicesRepo(), newStubOrdersRepo())

	_, err := svc.Create(context.Background(), CreateInput{OrderID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceMarkPrinted(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	svc := newTestService(t, newStubInvoicesRepo(), ordersRepo)

	order := seedServedOrder(ordersRepo)
	invoice, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	printed, err := svc.MarkPrinted(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, printed.IsPrinted)
	assert.Equal(t, 1, printed.PrintCount)
	require.NotNil(t, printed.PrintedAt)
	first := *printed.PrintedAt

	again, err := svc.MarkPrinted(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.PrintCount)
	assert.Equal(t, first, *again.PrintedAt)
}

func TestServiceMarkEmailed(t *testing.T) {
	ordersRepo := newStubOrdersRepo()
	svc := newTestService(t, newStubInvoicesRepo(), ordersRepo)

	order := seedServedOrder(ordersRepo)
	invoice, err := svc.Create(context.Background(), CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	_, err = svc.MarkEmailed(context.Background(), invoice.ID, EmailInput{SentTo: "  "})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	emailed, err := svc.MarkEmailed(context.Background(), invoice.ID, EmailInput{SentTo: "asha@example.com"})
	require.NoError(t, err)
	assert.True(t, emailed.IsEmailSent)
	require.NotNil(t, emailed.EmailSentTo)
	assert.Equal(t, "asha@example.com", *emailed.EmailSentTo)
	assert.NotNil(t, emailed.EmailSentAt)
}
