// Package pricing computes line and order totals. All functions are pure:
// no I/O, no clock, no shared state.
//
// Rounding policy: unit prices and line totals are kept at full decimal
// precision; only the final order total is rounded, to 2 decimal places.
// Rounding each line independently before summation would accumulate drift.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// UnitPrice returns the effective per-unit price after applying a percentage
// discount in [0, 100]. The result is not rounded.
func UnitPrice(listPrice, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return listPrice
	}
	factor := hundred.Sub(discountPercent).Div(hundred)
	return listPrice.Mul(factor)
}

// LineTotal returns the discounted price for quantity units. Not rounded.
func LineTotal(listPrice, discountPercent decimal.Decimal, quantity int) decimal.Decimal {
	return UnitPrice(listPrice, discountPercent).Mul(decimal.NewFromInt(int64(quantity)))
}

// Line is one priced order line: the snapshotted unit price and quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// OrderTotal sums the lines' unit price x quantity and rounds the result to
// 2 decimal places. Summation order does not affect the result.
func OrderTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}
