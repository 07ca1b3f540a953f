package kots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
)

// Repository defines persistence operations for kitchen tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, kot *models.KOT) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.KOT, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.KOT, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.KOT, int64, error)
	Save(ctx context.Context, kot *models.KOT) error
}

// NumberSource issues the next ticket number for an order type.
type NumberSource interface {
	KOTNumber(ctx context.Context, orderType enums.OrderType) (string, error)
}

// Service defines the kitchen ticket operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.KOT, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.KOT, error)
	MarkPrinted(ctx context.Context, id uuid.UUID, input PrintInput) (*models.KOT, error)
}
