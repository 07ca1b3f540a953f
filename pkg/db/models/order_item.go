package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// OrderItem is one line of an order. Dish and variant names are snapshots
// taken at order time; later menu edits must not rewrite history.
type OrderItem struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	DishID      uuid.UUID  `gorm:"column:dish_id;type:uuid;not null"`
	DishName    string     `gorm:"column:dish_name;not null"`
	VariantID   *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	VariantName *string    `gorm:"column:variant_name"`

	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AddOns       types.AddOns    `gorm:"column:add_ons;type:jsonb;serializer:json"`
	Instructions *string         `gorm:"column:instructions"`

	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	KOTGenerated bool              `gorm:"column:kot_generated;not null;default:false"`
	ItemTotal    decimal.Decimal   `gorm:"column:item_total;type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
