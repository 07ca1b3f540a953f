package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/pkg/db"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/metrics"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// numberInsertAttempts bounds the regenerate-and-retry loop used when an
// invoice insert loses a race on the invoice number unique index.
const numberInsertAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo       Repository
	orders     orders.Repository
	tx         txRunner
	numbers    NumberSource
	restaurant types.RestaurantDetails
	metrics    *metrics.EngineMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the invoice service with its required dependencies.
// Metrics may be nil; every other dependency is mandatory.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, numbers NumberSource, restaurant types.RestaurantDetails, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if ordersRepo == nil {
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
		repo:       repo,
		orders:     ordersRepo,
		tx:         tx,
		numbers:    numbers,
		restaurant: restaurant,
		metrics:    m,
		logg:       logg,
		now:        time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Invoice, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var created *models.Invoice
	do := func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			ordersRepo := s.orders.WithTx(tx)

			order, err := ordersRepo.FindByID(ctx, input.OrderID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
			}
			if order.Status == enums.OrderStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot invoice a cancelled order")
			}

			if _, err := repo.FindByOrder(ctx, order.ID); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "invoice already exists for this order")
			} else if err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing invoice")
			}

			number, err := s.numbers.InvoiceNumber(ctx)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue invoice number")
			}

			invoice := buildInvoice(order, number, s.restaurant, input)
			if err := repo.Create(ctx, invoice); err != nil {
				// the lookup above raced a concurrent create
				if db.IsUniqueViolation(err, "idx_invoices_order_id") {
					return pkgerrors.New(pkgerrors.CodeConflict, "invoice already exists for this order")
				}
				if db.IsUniqueViolation(err, "idx_invoices_invoice_number") {
					return retry.RetryableError(err)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
			}

			order.InvoiceNumber = &invoice.InvoiceNumber
			if err := ordersRepo.Save(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link invoice to order")
			}

			created = invoice
			return nil
		})
	}

	backoff := retry.WithMaxRetries(numberInsertAttempts-1, retry.NewConstant(10*time.Millisecond))
	if err := retry.Do(ctx, backoff, do); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}

	s.metrics.IncInvoiceCreated()
	ctx = s.logg.WithOrderID(ctx, created.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("invoice %s created for order %s", created.InvoiceNumber, created.OrderNumber))
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	invoice, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order has no invoice")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	params = params.Normalize()
	result, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return &List{
		Invoices:    result,
		TotalCount:  total,
		PageCount:   pagination.PageCount(total, params.Limit),
		CurrentPage: params.Page,
		Limit:       params.Limit,
	}, nil
}

func (s *service) MarkPrinted(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	var updated *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}

		now := s.now().UTC()
		invoice.IsPrinted = true
		if invoice.PrintedAt == nil {
			invoice.PrintedAt = &now
		}
		invoice.PrintCount++

		if err := repo.Save(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save invoice print state")
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkEmailed(ctx context.Context, id uuid.UUID, input EmailInput) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if strings.TrimSpace(input.SentTo) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}

	var updated *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}

		now := s.now().UTC()
		sentTo := strings.TrimSpace(input.SentTo)
		invoice.IsEmailSent = true
		invoice.EmailSentAt = &now
		invoice.EmailSentTo = &sentTo

		if err := repo.Save(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save invoice email state")
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// buildInvoice freezes the order's financial state into a standalone
// snapshot. Nothing here is recalculated later.
func buildInvoice(order *models.Order, number string, restaurant types.RestaurantDetails, input CreateInput) *models.Invoice {
	paid := order.Payments.Total()
	change := decimal.Zero
	outstanding := decimal.Zero
	if paid.GreaterThan(order.AmountDue) {
		change = paid.Sub(order.AmountDue)
	} else {
		outstanding = order.AmountDue.Sub(paid)
	}

	status := enums.InvoiceStatusIssued
	isPaid := order.PaymentStatus == enums.PaymentStatusPaid
	if isPaid {
		status = enums.InvoiceStatusPaid
	}

	return &models.Invoice{
		InvoiceNumber:     number,
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerDetails:   order.Customer,
		RestaurantDetails: restaurant,
		Items:             pq.StringArray(flattenItems(order.Items)),
		TaxBreakup:        order.TaxBreakdown,
		PaymentDetails: types.PaymentDetails{
			Subtotal:          order.Subtotal,
			TaxTotal:          order.TotalTax,
			Discount:          order.DiscountAmount,
			DeliveryCharge:    order.DeliveryCharge,
			PackagingCharge:   order.PackagingCharge,
			ServiceCharge:     order.ServiceCharge,
			Tip:               order.Tip,
			RoundOff:          order.RoundOff,
			GrandTotal:        order.AmountDue,
			AmountPaid:        paid,
			ChangeReturned:    change,
			OutstandingAmount: outstanding,
		},
		PaymentMethods: pq.StringArray(order.Payments.Methods()),
		AdditionalInfo: input.AdditionalInfo,
		Status:         status,
		IsPaid:         isPaid,
		CreatedBy:      input.Actor,
	}
}

// flattenItems renders each order line as a print-ready string:
// "Paneer Tikka - Large (extra cheese, mint chutney)".
func flattenItems(items []models.OrderItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var sb strings.Builder
		sb.WriteString(item.DishName)
		if item.VariantName != nil && *item.VariantName != "" {
			sb.WriteString(" - ")
			sb.WriteString(*item.VariantName)
		}
		if len(item.AddOns) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(item.AddOns.Names(), ", "))
			sb.WriteString(")")
		}
		lines = append(lines, sb.String())
	}
	return lines
}
