package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Invoice, int64, error)
	Save(ctx context.Context, invoice *models.Invoice) error
}

// NumberSource issues the next invoice number.
type NumberSource interface {
	InvoiceNumber(ctx context.Context) (string, error)
}

// Service defines the invoice operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	MarkPrinted(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	MarkEmailed(ctx context.Context, id uuid.UUID, input EmailInput) (*models.Invoice, error)
}
