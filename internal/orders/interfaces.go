package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	Save(ctx context.Context, order *models.Order) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	UpdateItemsKOTFlag(ctx context.Context, itemIDs []uuid.UUID, generated bool) error
}

// NumberSource issues the next order number. Numbers are drawn before
// the order insert so a failed write costs a gap, not a duplicate.
type NumberSource interface {
	OrderNumber(ctx context.Context) (string, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.Order, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Order, error)
}
