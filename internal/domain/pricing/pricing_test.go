package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"no discount", "500", "0", "500"},
		{"ten percent", "1000", "10", "900"},
		{"fractional result", "99.99", "15", "84.9915"},
		{"full discount", "250", "100", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPrice(dec(tt.price), dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(dec("1000"), dec("10"), 2)
	assert.True(t, dec("1800").Equal(got), "got %s", got)
}

func TestOrderTotal_MixedDiscounts(t *testing.T) {
	// Product A: 1000 with 10% off, x2. Product B: 500, x1.
	lines := []Line{
		{UnitPrice: UnitPrice(dec("1000"), dec("10")), Quantity: 2},
		{UnitPrice: UnitPrice(dec("500"), dec("0")), Quantity: 1},
	}
	total := OrderTotal(lines)
	require.True(t, dec("2300").Equal(total), "got %s", total)
}

func TestOrderTotal_OrderIndependent(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("84.9915"), Quantity: 3},
		{UnitPrice: dec("12.3456"), Quantity: 7},
		{UnitPrice: dec("0.01"), Quantity: 1},
	}
	forward := OrderTotal(lines)

	reversed := []Line{lines[2], lines[1], lines[0]}
	backward := OrderTotal(reversed)

	assert.True(t, forward.Equal(backward))
}

func TestOrderTotal_RoundsOnlyFinalSum(t *testing.T) {
	// Two lines of 0.005 each: rounding per line (0.01 + 0.01) would give
	// 0.02, rounding the sum gives 0.01.
	lines := []Line{
		{UnitPrice: dec("0.005"), Quantity: 1},
		{UnitPrice: dec("0.005"), Quantity: 1},
	}
	total := OrderTotal(lines)
	assert.True(t, dec("0.01").Equal(total), "got %s", total)
}

func TestOrderTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(OrderTotal(nil)))
}
