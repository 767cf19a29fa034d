// Package pricing computes order totals from resolved unit prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/food-ordering/internal/domain/discount"
)

// Line is a cart line with its authoritative unit price already resolved.
type Line struct {
	MenuItemID int64
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Total returns UnitPrice * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary aggregates the computed pricing components of an order.
type Summary struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

// Compute calculates subtotal, discount and final amount. Lines with a
// non-positive quantity contribute nothing; callers are expected to reject
// them before pricing. Final is always Subtotal - Discount and never negative.
func Compute(lines []Line, policy discount.Policy) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = subtotal.Round(2)

	off := policy.Apply(subtotal)
	final := subtotal.Sub(off)
	if final.IsNegative() {
		final = decimal.Zero
		off = subtotal
	}

	return Summary{
		Subtotal: subtotal,
		Discount: off,
		Final:    final,
	}
}
