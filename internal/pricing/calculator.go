// Package pricing computes order totals, tax breakdowns and rounding.
// All arithmetic is decimal based; float64 never touches money.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// ItemInput is one order line as the calculator sees it.
type ItemInput struct {
	UnitPrice decimal.Decimal
	Quantity  int
	AddOns    types.AddOns
}

// Discount describes an order-level discount.
type Discount struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// Charges carries the flat order-level charges applied after tax.
type Charges struct {
	Delivery  decimal.Decimal
	Packaging decimal.Decimal
	Service   decimal.Decimal
	Tip       decimal.Decimal
}

// Input is everything Calculate needs to price an order.
type Input struct {
	Items    []ItemInput
	Discount Discount
	Charges  Charges
	TaxRules []types.TaxRule
}

// Result is the fully computed pricing block for an order.
type Result struct {
	ItemTotals      []decimal.Decimal
	Subtotal        decimal.Decimal
	TaxBreakdown    types.TaxLines
	TotalTax        decimal.Decimal
	DiscountAmount  decimal.Decimal
	DeliveryCharge  decimal.Decimal
	PackagingCharge decimal.Decimal
	ServiceCharge   decimal.Decimal
	Tip             decimal.Decimal
	Total           decimal.Decimal
	RoundOff        decimal.Decimal
	GrandTotal      decimal.Decimal
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ItemTotal prices a single line: unit price * quantity plus the add-on
// sum. Add-ons are charged once per line, not per unit.
func ItemTotal(item ItemInput) decimal.Decimal {
	base := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return Round2(base.Add(item.AddOns.Total()))
}

// TaxBreakdownFor applies each rule to the taxable base. Every line is
// rounded on its own and the total tax is the sum of the rounded lines,
// so the breakdown always adds up to what the customer is charged.
func TaxBreakdownFor(base decimal.Decimal, rules []types.TaxRule) (types.TaxLines, decimal.Decimal) {
	if len(rules) == 0 {
		return nil, decimal.Zero
	}
	lines := make(types.TaxLines, 0, len(rules))
	total := decimal.Zero
	for _, rule := range rules {
		amount := Round2(base.Mul(rule.Rate).Div(hundred))
		lines = append(lines, types.TaxLine{
			TaxName:   rule.Name,
			TaxRate:   rule.Rate,
			TaxAmount: amount,
		})
		total = total.Add(amount)
	}
	return lines, total
}

// DiscountAmount resolves the configured discount against the subtotal.
func DiscountAmount(subtotal decimal.Decimal, discount Discount) (decimal.Decimal, error) {
	switch discount.Type {
	case enums.DiscountTypeNone, "":
		return decimal.Zero, nil
	case enums.DiscountTypePercentage:
		if discount.Value.IsNegative() || discount.Value.GreaterThan(hundred) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount must be between 0 and 100")
		}
		return Round2(subtotal.Mul(discount.Value).Div(hundred)), nil
	case enums.DiscountTypeFixed:
		if discount.Value.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "fixed discount cannot be negative")
		}
		amount := Round2(discount.Value)
		if amount.GreaterThan(subtotal) {
			amount = subtotal
		}
		return amount, nil
	default:
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown discount type %q", discount.Type)
	}
}

// Calculate prices an order end to end: item totals, subtotal, tax on
// the subtotal, flat charges, discount off the total, then round-off to
// the nearest whole amount.
func Calculate(in Input) (Result, error) {
	var res Result

	res.ItemTotals = make([]decimal.Decimal, len(in.Items))
	subtotal := decimal.Zero
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative")
		}
		line := ItemTotal(item)
		res.ItemTotals[i] = line
		subtotal = subtotal.Add(line)
	}
	res.Subtotal = Round2(subtotal)

	discount, err := DiscountAmount(res.Subtotal, in.Discount)
	if err != nil {
		return Result{}, err
	}
	res.DiscountAmount = discount

	res.TaxBreakdown, res.TotalTax = TaxBreakdownFor(res.Subtotal, in.TaxRules)

	res.DeliveryCharge = Round2(in.Charges.Delivery)
	res.PackagingCharge = Round2(in.Charges.Packaging)
	res.ServiceCharge = Round2(in.Charges.Service)
	res.Tip = Round2(in.Charges.Tip)

	res.Total = Round2(res.Subtotal.
		Add(res.TotalTax).
		Add(res.DeliveryCharge).
		Add(res.PackagingCharge).
		Add(res.ServiceCharge).
		Add(res.Tip).
		Sub(discount))

	res.GrandTotal = res.Total.Round(0)
	res.RoundOff = res.GrandTotal.Sub(res.Total)
	return res, nil
}
