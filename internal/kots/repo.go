package kots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/internal/repo"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds a KOT repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, kot *models.KOT) error {
	return r.DB(ctx).Create(kot).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.KOT, error) {
	var kot models.KOT
	err := r.DB(ctx).Where("id = ?", id).First(&kot).Error
	if err != nil {
		return nil, err
	}
	return &kot, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.KOT, error) {
	var result []models.KOT
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.KOT, int64, error) {
	params = params.Normalize()

	qb := r.DB(ctx).Model(&models.KOT{})
	if filters.OrderID != nil {
		qb = qb.Where("order_id = ?", *filters.OrderID)
	}
	if filters.Station != nil {
		qb = qb.Where("station = ?", *filters.Station)
	}
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		qb = qb.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		qb = qb.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Kitchen displays work the queue front to back: urgent first,
	// then oldest first.
	var result []models.KOT
	err := qb.
		Order("priority ASC").
		Order("created_at ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repository) Save(ctx context.Context, kot *models.KOT) error {
	return r.DB(ctx).Save(kot).Error
}
