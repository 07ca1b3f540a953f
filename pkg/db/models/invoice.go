package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// Invoice is the frozen financial snapshot of one order. The unique index
// on order_id enforces the at-most-one-per-order invariant at the store,
// so concurrent double-submissions fail atomically instead of racing the
// existence check.
type Invoice struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string    `gorm:"column:invoice_number;not null;uniqueIndex:idx_invoices_invoice_number"`

	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_invoices_order_id"`
	OrderNumber string    `gorm:"column:order_number;not null"`

	CustomerDetails   types.Customer          `gorm:"column:customer_details;type:jsonb;serializer:json"`
	RestaurantDetails types.RestaurantDetails `gorm:"column:restaurant_details;type:jsonb;serializer:json"`

	Items          pq.StringArray       `gorm:"column:items;type:text[]"`
	TaxBreakup     types.TaxLines       `gorm:"column:tax_breakup;type:jsonb;serializer:json"`
	PaymentDetails types.PaymentDetails `gorm:"column:payment_details;type:jsonb;serializer:json"`
	PaymentMethods pq.StringArray       `gorm:"column:payment_methods;type:text[]"`
	AdditionalInfo *string              `gorm:"column:additional_info"`

	Status enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'issued'"`
	IsPaid bool                `gorm:"column:is_paid;not null;default:false"`

	IsEmailSent bool       `gorm:"column:is_email_sent;not null;default:false"`
	EmailSentAt *time.Time `gorm:"column:email_sent_at"`
	EmailSentTo *string    `gorm:"column:email_sent_to"`

	IsPrinted  bool       `gorm:"column:is_printed;not null;default:false"`
	PrintedAt  *time.Time `gorm:"column:printed_at"`
	PrintCount int        `gorm:"column:print_count;not null;default:0"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
