package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// KOTItem is the snapshot of one order item routed onto a ticket. It keeps
// its own status so a station can resolve lines independently.
type KOTItem struct {
	OrderItemID  uuid.UUID       `json:"order_item_id"`
	DishName     string          `json:"dish_name"`
	VariantName  *string         `json:"variant_name,omitempty"`
	Quantity     int             `json:"quantity"`
	Instructions *string         `json:"instructions,omitempty"`
	Status       enums.KOTStatus `json:"status"`
}

// KOTItems is stored as a jsonb column on kots.
type KOTItems []KOTItem

// KOT is one kitchen ticket: a subset of an order's items routed to a
// preparation station. Tickets are never deleted, only terminal-stated.
type KOT struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	KOTNumber string    `gorm:"column:kot_number;not null;uniqueIndex:idx_kots_kot_number"`

	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	OrderNumber string          `gorm:"column:order_number;not null"`
	OrderType   enums.OrderType `gorm:"column:order_type;type:text;not null"`
	TableName   *string         `gorm:"column:table_name"`
	Customer    types.Customer  `gorm:"column:customer;type:jsonb;serializer:json"`

	Items  KOTItems        `gorm:"column:items;type:jsonb;serializer:json"`
	Status enums.KOTStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	Station  enums.KOTStation `gorm:"column:station;type:text;not null;default:'kitchen'"`
	Priority int              `gorm:"column:priority;not null;default:2"`

	PreparationStartTime    *time.Time `gorm:"column:preparation_start_time"`
	CompletionTime          *time.Time `gorm:"column:completion_time"`
	EstimatedCompletionTime *time.Time `gorm:"column:estimated_completion_time"`

	Printed    bool       `gorm:"column:printed;not null;default:false"`
	PrintedAt  *time.Time `gorm:"column:printed_at"`
	PrintCount int        `gorm:"column:print_count;not null;default:0"`
	PrintedBy  *string    `gorm:"column:printed_by"`

	StatusHistory types.StatusHistory `gorm:"column:status_history;type:jsonb;serializer:json"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
