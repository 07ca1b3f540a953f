package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// Order is the root aggregate of the engine: items, pricing, customer,
// payments and the status audit log. Items live in their own table as an
// owned composition; everything snapshot-shaped is jsonb.
type Order struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string    `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	InvoiceNumber *string   `gorm:"column:invoice_number;uniqueIndex:idx_orders_invoice_number,where:invoice_number IS NOT NULL"`

	OrderType          enums.OrderType `gorm:"column:order_type;type:text;not null"`
	ThirdPartyProvider *string         `gorm:"column:third_party_provider"`
	ExternalOrderID    *string         `gorm:"column:external_order_id"`

	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`

	Customer      types.Customer `gorm:"column:customer;type:jsonb;serializer:json"`
	CustomerName  string         `gorm:"column:customer_name;not null"`
	CustomerPhone string         `gorm:"column:customer_phone;not null;index"`

	TableID   *uuid.UUID `gorm:"column:table_id;type:uuid"`
	TableName *string    `gorm:"column:table_name"`
	ServerID  *uuid.UUID `gorm:"column:server_id;type:uuid"`
	CaptainID *uuid.UUID `gorm:"column:captain_id;type:uuid"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	Subtotal       decimal.Decimal    `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxBreakdown   types.TaxLines     `gorm:"column:tax_breakdown;type:jsonb;serializer:json"`
	TotalTax       decimal.Decimal    `gorm:"column:total_tax;type:numeric(12,2);not null"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null;default:'none'"`
	DiscountValue  decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	DiscountReason *string            `gorm:"column:discount_reason"`
	DiscountAmount decimal.Decimal    `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`

	DeliveryCharge  decimal.Decimal `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	PackagingCharge decimal.Decimal `gorm:"column:packaging_charge;type:numeric(12,2);not null;default:0"`
	ServiceCharge   decimal.Decimal `gorm:"column:service_charge;type:numeric(12,2);not null;default:0"`
	Tip             decimal.Decimal `gorm:"column:tip;type:numeric(12,2);not null;default:0"`

	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	RoundOff  decimal.Decimal `gorm:"column:round_off;type:numeric(12,2);not null;default:0"`
	AmountDue decimal.Decimal `gorm:"column:amount_due;type:numeric(12,2);not null"`

	Payments types.Payments `gorm:"column:payments;type:jsonb;serializer:json"`

	KOTs    []KOT    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Invoice *Invoice `gorm:"foreignKey:OrderID"`

	StatusHistory types.StatusHistory `gorm:"column:status_history;type:jsonb;serializer:json"`
	CancelReason  *string             `gorm:"column:cancel_reason"`
	CancelledBy   *uuid.UUID          `gorm:"column:cancelled_by;type:uuid"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
