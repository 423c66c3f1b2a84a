// Package pricing computes order summaries from cart line items. The
// calculation is pure: the same line items and rule always produce the same
// summary, and callers are expected to recompute on every cart mutation
// rather than cache a summary across changes.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Rule carries the storefront pricing constants. Shipping is free above the
// threshold, otherwise the flat fee applies; tax is a flat rate on the
// subtotal.
type Rule struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int32
}

type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	TotalItems  int32           `json:"totalItems"`
}

type Calculator struct {
	rule Rule
}

func NewCalculator(rule Rule) Calculator {
	return Calculator{rule: rule}
}

// Summarize aggregates the line items into a summary. Items with a zero
// quantity are logically absent and contribute nothing, but it is the
// caller's business whether they stay in the underlying collection.
func (c Calculator) Summarize(items []LineItem) Summary {
	subtotal := decimal.Zero
	totalItems := int32(0)
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
		totalItems += item.Quantity
	}

	shippingFee := c.rule.FlatShippingFee
	if subtotal.GreaterThan(c.rule.FreeShippingThreshold) {
		shippingFee = decimal.Zero
	}
	tax := subtotal.Mul(c.rule.TaxRate)

	return Summary{
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Tax:         tax,
		Total:       subtotal.Add(shippingFee).Add(tax),
		TotalItems:  totalItems,
	}
}

// MinorUnits converts a decimal amount into minor currency units (fils for
// AED), rounding to the nearest unit, for integer-safe processor amounts.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
