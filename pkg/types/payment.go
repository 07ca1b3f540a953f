package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records one settlement against an order.
type Payment struct {
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}

// Payments is stored as a jsonb column on orders.
type Payments []Payment

// Total sums every recorded payment.
func (p Payments) Total() decimal.Decimal {
	total := decimal.Zero
	for _, payment := range p {
		total = total.Add(payment.Amount)
	}
	return total
}

// Methods returns the distinct payment methods in recording order.
func (p Payments) Methods() []string {
	seen := map[string]bool{}
	var methods []string
	for _, payment := range p {
		if seen[payment.Method] {
			continue
		}
		seen[payment.Method] = true
		methods = append(methods, payment.Method)
	}
	return methods
}
