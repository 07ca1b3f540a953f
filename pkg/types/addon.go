package types

import "github.com/shopspring/decimal"

// AddOn is an extra attached to one order item, priced per unit of the item.
type AddOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddOns is stored as a jsonb column on order items.
type AddOns []AddOn

// Total sums the add-on prices.
func (a AddOns) Total() decimal.Decimal {
	total := decimal.Zero
	for _, addOn := range a {
		total = total.Add(addOn.Price)
	}
	return total
}

// Names lists the add-on display names in order.
func (a AddOns) Names() []string {
	names := make([]string, 0, len(a))
	for _, addOn := range a {
		names = append(names, addOn.Name)
	}
	return names
}
