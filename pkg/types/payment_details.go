package types

import "github.com/shopspring/decimal"

// PaymentDetails is the frozen financial summary captured on an invoice.
// It is a point-in-time copy of the order's pricing block, never
// recalculated after the invoice is created.
type PaymentDetails struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	Discount          decimal.Decimal `json:"discount"`
	DeliveryCharge    decimal.Decimal `json:"delivery_charge"`
	PackagingCharge   decimal.Decimal `json:"packaging_charge"`
	ServiceCharge     decimal.Decimal `json:"service_charge"`
	Tip               decimal.Decimal `json:"tip"`
	RoundOff          decimal.Decimal `json:"round_off"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	ChangeReturned    decimal.Decimal `json:"change_returned"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}
