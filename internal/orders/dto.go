package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

// ItemInput is one order line as submitted by the caller. Dish and
// variant names are snapshotted onto the stored item.
type ItemInput struct {
	DishID       uuid.UUID       `json:"dish_id"`
	DishName     string          `json:"dish_name"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	VariantName  *string         `json:"variant_name,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	AddOns       types.AddOns    `json:"add_ons,omitempty"`
	Instructions *string         `json:"instructions,omitempty"`
}

// DiscountInput is the order-level discount submitted at creation or update.
type DiscountInput struct {
	Type   enums.DiscountType `json:"type"`
	Value  decimal.Decimal    `json:"value"`
	Reason *string            `json:"reason,omitempty"`
}

// ChargesInput carries the optional flat charges for an order.
type ChargesInput struct {
	Delivery  decimal.Decimal `json:"delivery"`
	Packaging decimal.Decimal `json:"packaging"`
	Service   decimal.Decimal `json:"service"`
	Tip       decimal.Decimal `json:"tip"`
}

// CreateInput is everything needed to open a new order.
type CreateInput struct {
	OrderType          enums.OrderType
	Customer           types.Customer
	TableID            *uuid.UUID
	TableName          *string
	ServerID           *uuid.UUID
	CaptainID          *uuid.UUID
	ThirdPartyProvider *string
	ExternalOrderID    *string
	Items              []ItemInput
	Discount           *DiscountInput
	Charges            ChargesInput
	Actor              *uuid.UUID
}

// UpdateInput is a partial patch against a non-terminal order. Nil
// fields keep their current value; setting Items replaces all lines.
type UpdateInput struct {
	Customer  *types.Customer
	TableID   *uuid.UUID
	TableName *string
	ServerID  *uuid.UUID
	CaptainID *uuid.UUID
	Items     []ItemInput
	Discount  *DiscountInput
	Charges   *ChargesInput
	Actor     *uuid.UUID
}

// StatusInput requests a lifecycle transition.
type StatusInput struct {
	Status enums.OrderStatus
	Reason *string
	Notes  string
	Actor  *uuid.UUID
}

// PaymentInput records one settlement against an order.
type PaymentInput struct {
	Method        enums.PaymentMethod
	Amount        decimal.Decimal
	TransactionID *string
	Actor         *uuid.UUID
}

// ListFilters describe the inputs supported by the order list.
type ListFilters struct {
	Status        *enums.OrderStatus
	OrderType     *enums.OrderType
	PaymentStatus *enums.PaymentStatus
	TableID       *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// List wraps a page of orders plus the totals needed to page further.
type List struct {
	Orders      []ListEntry `json:"orders"`
	TotalCount  int64       `json:"totalCount"`
	PageCount   int         `json:"pageCount"`
	CurrentPage int         `json:"currentPage"`
	Limit       int         `json:"limit"`
}

// ListEntry is the summary row returned by the order list.
type ListEntry struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	OrderType     enums.OrderType     `json:"order_type"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	TableName     *string             `json:"table_name,omitempty"`
	TotalItems    int                 `json:"total_items"`
	Total         decimal.Decimal     `json:"total"`
	AmountDue     decimal.Decimal     `json:"amount_due"`
	CreatedAt     time.Time           `json:"created_at"`
}
