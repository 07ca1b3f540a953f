package types

import "github.com/shopspring/decimal"

// TaxRule is a configured tax applied to order subtotals.
type TaxRule struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// TaxLine is one computed row of an order's tax breakdown.
type TaxLine struct {
	TaxName   string          `json:"tax_name"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// TaxLines is stored as a jsonb column on orders and invoices.
type TaxLines []TaxLine

// Total sums the already-rounded line amounts. The breakdown is the source
// of truth so the displayed rows always add up to the displayed total.
func (t TaxLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t {
		total = total.Add(line.TaxAmount)
	}
	return total
}
