package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
	saved  int
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
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

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	var result []models.Order
	for _, order := range s.orders {
		result = append(result, *order)
	}
	return result, int64(len(result)), nil
}

func (s *stubOrdersRepo) Save(ctx context.Context, order *models.Order) error {
	stored := *order
	s.orders[order.ID] = &stored
	s.saved++
	return nil
}

func (s *stubOrdersRepo) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	order.Items = items
	return nil
}

func (s *stubOrdersRepo) UpdateItemsKOTFlag(ctx context.Context, itemIDs []uuid.UUID, generated bool) error {
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubNumberSource struct {
	next int
}

func (s *stubNumberSource) OrderNumber(ctx context.Context) (string, error) {
	s.next++
	return time.Now().UTC().Format("ORD-060102-") + string(rune('0'+s.next)), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testTaxRules() []types.TaxRule {
	return []types.TaxRule{
		{Name: "CGST", Rate: decimal.RequireFromString("2.5")},
		{Name: "SGST", Rate: decimal.RequireFromString("2.5")},
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubNumberSource{}, testTaxRules(), nil, testLogger())
	require.NoError(t, err)
	return svc
}

func validCreateInput() CreateInput {
	tableID := uuid.New()
	return CreateInput{
		OrderType: enums.OrderTypeDineIn,
		Customer:  types.Customer{Name: "Asha Rao", Phone: "9876543210"},
		TableID:   &tableID,
		Items: []ItemInput{
			{
				DishID:    uuid.New(),
				DishName:  "Paneer Tikka",
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("100"),
				AddOns:    types.AddOns{{Name: "extra cheese", Price: decimal.RequireFromString("20")}},
			},
		},
	}
}

func TestServiceCreateOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("220")))
	assert.True(t, order.TotalTax.Equal(decimal.RequireFromString("11")))
	assert.True(t, order.AmountDue.Equal(decimal.RequireFromString("231")))
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "pending", order.StatusHistory[0].Status)
	assert.Equal(t, "Order created", order.StatusHistory[0].Notes)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].ItemTotal.Equal(decimal.RequireFromString("220")))
}

func TestServiceCreateValidation(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing phone", func(in *CreateInput) { in.Customer.Phone = "" }},
		{"missing name", func(in *CreateInput) { in.Customer.Name = "" }},
		{"no items", func(in *CreateInput) { in.Items = nil }},
		{"bad order type", func(in *CreateInput) { in.OrderType = "drive_through" }},
		{"dine-in without table", func(in *CreateInput) { in.TableID = nil }},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }},
		{"third party without provider", func(in *CreateInput) {
			in.OrderType = enums.OrderTypeThirdParty
			in.ThirdPartyProvider = nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceUpdateRecalculatesTotals(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{
		Discount: &DiscountInput{
			Type:  enums.DiscountTypePercentage,
			Value: decimal.RequireFromString("10"),
		},
	})
	require.NoError(t, err)

	assert.True(t, updated.DiscountAmount.Equal(decimal.RequireFromString("22")))
	assert.True(t, updated.TotalTax.Equal(decimal.RequireFromString("11")), "tax %s", updated.TotalTax)
	assert.True(t, updated.AmountDue.Equal(decimal.RequireFromString("209")))
	assert.True(t, updated.RoundOff.IsZero())
	// no status change, so no new history entry
	assert.Len(t, updated.StatusHistory, 1)
}

func TestServiceUpdateReplacesItems(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{
		Items: []ItemInput{
			{DishID: uuid.New(), DishName: "Dal Fry", Quantity: 1, UnitPrice: decimal.RequireFromString("80")},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Dal Fry", updated.Items[0].DishName)
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("80")))
}

func TestServiceUpdateBlockedOnTerminalOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: enums.OrderStatusCancelled})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	_, err = svc.Update(context.Background(), order.ID, UpdateInput{TableName: ptr("T4")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestServiceUpdateStatusHappyPath(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	steps := []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusServed,
		enums.OrderStatusCompleted,
	}
	for _, status := range steps {
		updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: status})
		require.NoError(t, err, "step %s", status)
		assert.Equal(t, status, updated.Status)
	}

	final, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	// created + five transitions, one entry each
	assert.Len(t, final.StatusHistory, 6)
	assert.Equal(t, "completed", final.StatusHistory.Latest().Status)
}

func TestServiceUpdateStatusRejectsIllegalStep(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: enums.OrderStatusServed})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Contains(t, typed.Message(), "pending")
	assert.Contains(t, typed.Message(), "served")
}

func TestServiceCancelDefaultsReason(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: enums.OrderStatusCancelled})
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "No reason provided", *cancelled.CancelReason)
}

func TestServiceCancelWithPaymentsFlagsRefund(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), order.ID, PaymentInput{
		Method: enums.PaymentMethodUPI,
		Amount: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: enums.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefundPending, cancelled.PaymentStatus)
}

func TestServiceRecordPaymentDerivesStatus(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	// amount due is 231

	partial, err := svc.RecordPayment(context.Background(), order.ID, PaymentInput{
		Method: enums.PaymentMethodCash,
		Amount: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPartiallyPaid, partial.PaymentStatus)

	paid, err := svc.RecordPayment(context.Background(), order.ID, PaymentInput{
		Method: enums.PaymentMethodCard,
		Amount: decimal.RequireFromString("131"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, []string{"cash", "card"}, paid.Payments.Methods())
}

func TestServiceRecordPaymentRejectsCancelledOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, StatusInput{Status: enums.OrderStatusCancelled})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), order.ID, PaymentInput{
		Method: enums.PaymentMethodCash,
		Amount: decimal.RequireFromString("50"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func ptr[T any](v T) *T {
	return &v
}
