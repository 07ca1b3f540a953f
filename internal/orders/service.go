package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/internal/pricing"
	"github.com/axeyQ/restropos-backend/pkg/db"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/metrics"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

const defaultCancelReason = "No reason provided"

// numberInsertAttempts bounds the regenerate-and-retry loop used when an
// order insert loses a race on the order number unique index.
const numberInsertAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	tx       txRunner
	numbers  NumberSource
	taxRules []types.TaxRule
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order service with its required dependencies.
// Metrics may be nil; every other dependency is mandatory.
func NewService(repo Repository, tx txRunner, numbers NumberSource, taxRules []types.TaxRule, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		numbers:  numbers,
		taxRules: taxRules,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	priced, err := priceItems(input.Items, input.Discount, input.Charges, s.taxRules)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		OrderType:          input.OrderType,
		ThirdPartyProvider: input.ThirdPartyProvider,
		ExternalOrderID:    input.ExternalOrderID,
		Status:             enums.OrderStatusPending,
		PaymentStatus:      enums.PaymentStatusUnpaid,
		Customer:           input.Customer,
		CustomerName:       input.Customer.Name,
		CustomerPhone:      input.Customer.Phone,
		TableID:            input.TableID,
		TableName:          input.TableName,
		ServerID:           input.ServerID,
		CaptainID:          input.CaptainID,
		StatusHistory: types.StatusHistory{}.
			Append(enums.OrderStatusPending.String(), input.Actor, "Order created", now),
		CreatedBy: input.Actor,
		UpdatedBy: input.Actor,
	}
	applyPricing(order, priced, input.Discount)
	order.Items = buildItems(input.Items, priced.ItemTotals)

	// Regenerate the number and retry if a concurrent create wins the
	// unique index; the skipped value stays a gap in the sequence.
	backoff := retry.WithMaxRetries(numberInsertAttempts-1, retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		number, err := s.numbers.OrderNumber(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		createErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, order)
		})
		if db.IsUniqueViolation(createErr, "idx_orders_order_number") {
			return retry.RetryableError(createErr)
		}
		return createErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncOrderCreated(order.OrderType.String())
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s created", order.OrderNumber))
	return order, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	params = params.Normalize()
	result, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	entries := make([]ListEntry, 0, len(result))
	for _, order := range result {
		totalItems := 0
		for _, item := range order.Items {
			totalItems += item.Quantity
		}
		entries = append(entries, ListEntry{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			OrderType:     order.OrderType,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			TableName:     order.TableName,
			TotalItems:    totalItems,
			Total:         order.Total,
			AmountDue:     order.AmountDue,
			CreatedAt:     order.CreatedAt,
		})
	}
	return &List{
		Orders:      entries,
		TotalCount:  total,
		PageCount:   pagination.PageCount(total, params.Limit),
		CurrentPage: params.Page,
		Limit:       params.Limit,
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot modify order in %s state", order.Status)
		}

		mergePatch(order, input)

		itemInputs := input.Items
		if itemInputs == nil {
			itemInputs = itemsToInputs(order.Items)
		} else if len(itemInputs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order must keep at least one item")
		}

		discount := currentDiscount(order)
		if input.Discount != nil {
			discount = input.Discount
		}
		charges := ChargesInput{
			Delivery:  order.DeliveryCharge,
			Packaging: order.PackagingCharge,
			Service:   order.ServiceCharge,
			Tip:       order.Tip,
		}
		if input.Charges != nil {
			charges = *input.Charges
		}

		priced, err := priceItems(itemInputs, discount, charges, s.taxRules)
		if err != nil {
			return err
		}
		applyPricing(order, priced, discount)
		order.PaymentStatus = derivePaymentStatus(order)
		order.UpdatedBy = input.Actor

		if input.Items != nil {
			items := buildItems(input.Items, priced.ItemTotals)
			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := repo.ReplaceItems(ctx, order.ID, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order items")
			}
			order.Items = items
		}

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", input.Status)
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, input.Status) {
			return InvalidTransition(order.Status, input.Status)
		}

		now := s.now().UTC()
		notes := input.Notes
		if input.Status == enums.OrderStatusCancelled {
			reason := defaultCancelReason
			if input.Reason != nil && strings.TrimSpace(*input.Reason) != "" {
				reason = strings.TrimSpace(*input.Reason)
			}
			order.CancelReason = &reason
			order.CancelledBy = input.Actor
			if notes == "" {
				notes = reason
			}
		}

		order.Status = input.Status
		order.StatusHistory = order.StatusHistory.Append(input.Status.String(), input.Actor, notes, now)
		order.PaymentStatus = derivePaymentStatus(order)
		order.UpdatedBy = input.Actor

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order status")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderStatus(updated.Status.String())
	ctx = s.logg.WithOrderID(ctx, updated.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s moved to %s", updated.OrderNumber, updated.Status))
	return updated, nil
}

func (s *service) RecordPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", input.Method)
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := findForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record payment on a cancelled order")
		}

		order.Payments = append(order.Payments, types.Payment{
			Method:        input.Method.String(),
			Amount:        pricing.Round2(input.Amount),
			TransactionID: input.TransactionID,
			PaidAt:        s.now().UTC(),
		})
		order.PaymentStatus = derivePaymentStatus(order)
		order.UpdatedBy = input.Actor

		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order payment")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func findForUpdate(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func validateCreateInput(input CreateInput) error {
	if !input.OrderType.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order type %q", input.OrderType)
	}
	if strings.TrimSpace(input.Customer.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if input.OrderType == enums.OrderTypeDineIn && input.TableID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "dine-in orders require a table")
	}
	if input.OrderType == enums.OrderTypeThirdParty && input.ThirdPartyProvider == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "third-party orders require a provider")
	}
	for _, item := range input.Items {
		if item.DishID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item dish id required")
		}
		if strings.TrimSpace(item.DishName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item dish name required")
		}
	}
	return nil
}

func priceItems(items []ItemInput, discount *DiscountInput, charges ChargesInput, rules []types.TaxRule) (pricing.Result, error) {
	in := pricing.Input{
		Items:    make([]pricing.ItemInput, 0, len(items)),
		TaxRules: rules,
		Charges: pricing.Charges{
			Delivery:  charges.Delivery,
			Packaging: charges.Packaging,
			Service:   charges.Service,
			Tip:       charges.Tip,
		},
	}
	for _, item := range items {
		in.Items = append(in.Items, pricing.ItemInput{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			AddOns:    item.AddOns,
		})
	}
	if discount != nil {
		in.Discount = pricing.Discount{Type: discount.Type, Value: discount.Value}
	}
	return pricing.Calculate(in)
}

func applyPricing(order *models.Order, priced pricing.Result, discount *DiscountInput) {
	order.Subtotal = priced.Subtotal
	order.TaxBreakdown = priced.TaxBreakdown
	order.TotalTax = priced.TotalTax
	order.DiscountAmount = priced.DiscountAmount
	order.DeliveryCharge = priced.DeliveryCharge
	order.PackagingCharge = priced.PackagingCharge
	order.ServiceCharge = priced.ServiceCharge
	order.Tip = priced.Tip
	order.Total = priced.Total
	order.RoundOff = priced.RoundOff
	order.AmountDue = priced.GrandTotal

	if discount != nil {
		order.DiscountType = discount.Type
		order.DiscountValue = discount.Value
		order.DiscountReason = discount.Reason
	} else {
		order.DiscountType = enums.DiscountTypeNone
		order.DiscountValue = decimal.Zero
		order.DiscountReason = nil
	}
}

func buildItems(inputs []ItemInput, totals []decimal.Decimal) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(inputs))
	for i, input := range inputs {
		items = append(items, models.OrderItem{
			DishID:       input.DishID,
			DishName:     input.DishName,
			VariantID:    input.VariantID,
			VariantName:  input.VariantName,
			Quantity:     input.Quantity,
			UnitPrice:    pricing.Round2(input.UnitPrice),
			AddOns:       input.AddOns,
			Instructions: input.Instructions,
			Status:       enums.OrderStatusPending,
			ItemTotal:    totals[i],
		})
	}
	return items
}

func itemsToInputs(items []models.OrderItem) []ItemInput {
	inputs := make([]ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ItemInput{
			DishID:       item.DishID,
			DishName:     item.DishName,
			VariantID:    item.VariantID,
			VariantName:  item.VariantName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			AddOns:       item.AddOns,
			Instructions: item.Instructions,
		})
	}
	return inputs
}

func currentDiscount(order *models.Order) *DiscountInput {
	if order.DiscountType == enums.DiscountTypeNone || order.DiscountType == "" {
		return nil
	}
	return &DiscountInput{
		Type:   order.DiscountType,
		Value:  order.DiscountValue,
		Reason: order.DiscountReason,
	}
}

func mergePatch(order *models.Order, input UpdateInput) {
	if input.Customer != nil {
		order.Customer = *input.Customer
		order.CustomerName = input.Customer.Name
		order.CustomerPhone = input.Customer.Phone
	}
	if input.TableID != nil {
		order.TableID = input.TableID
	}
	if input.TableName != nil {
		order.TableName = input.TableName
	}
	if input.ServerID != nil {
		order.ServerID = input.ServerID
	}
	if input.CaptainID != nil {
		order.CaptainID = input.CaptainID
	}
}

// derivePaymentStatus recomputes payment state from recorded payments.
// A cancelled order with money on it flips to refund_pending until the
// refund is settled out of band.
func derivePaymentStatus(order *models.Order) enums.PaymentStatus {
	paid := order.Payments.Total()
	if order.Status == enums.OrderStatusCancelled {
		if paid.IsPositive() {
			return enums.PaymentStatusRefundPending
		}
		return order.PaymentStatus
	}
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return enums.PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(order.AmountDue):
		return enums.PaymentStatusPaid
	default:
		return enums.PaymentStatusPartiallyPaid
	}
}
