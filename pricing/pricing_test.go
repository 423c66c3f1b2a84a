package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testRule() Rule {
	return Rule{
		FreeShippingThreshold: decimal.NewFromInt(200),
		FlatShippingFee:       decimal.NewFromInt(25),
		TaxRate:               decimal.RequireFromString("0.05"),
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		expected Summary
	}{
		{
			name:  "empty cart yields zero summary with flat shipping",
			items: nil,
			expected: Summary{
				Subtotal:    decimal.Zero,
				ShippingFee: decimal.NewFromInt(25),
				Tax:         decimal.Zero,
				Total:       decimal.NewFromInt(25),
				TotalItems:  0,
			},
		},
		{
			name: "two items at 50 gets flat shipping and 5 percent tax",
			items: []LineItem{
				{UnitPrice: decimal.NewFromInt(50), Quantity: 2},
			},
			expected: Summary{
				Subtotal:    decimal.NewFromInt(100),
				ShippingFee: decimal.NewFromInt(25),
				Tax:         decimal.NewFromInt(5),
				Total:       decimal.NewFromInt(130),
				TotalItems:  2,
			},
		},
		{
			name: "subtotal above threshold ships free",
			items: []LineItem{
				{UnitPrice: decimal.NewFromInt(205), Quantity: 1},
			},
			expected: Summary{
				Subtotal:    decimal.NewFromInt(205),
				ShippingFee: decimal.Zero,
				Tax:         decimal.RequireFromString("10.25"),
				Total:       decimal.RequireFromString("215.25"),
				TotalItems:  1,
			},
		},
		{
			name: "subtotal below threshold pays flat fee",
			items: []LineItem{
				{UnitPrice: decimal.NewFromInt(195), Quantity: 1},
			},
			expected: Summary{
				Subtotal:    decimal.NewFromInt(195),
				ShippingFee: decimal.NewFromInt(25),
				Tax:         decimal.RequireFromString("9.75"),
				Total:       decimal.RequireFromString("229.75"),
				TotalItems:  1,
			},
		},
		{
			name: "subtotal exactly at threshold still pays flat fee",
			items: []LineItem{
				{UnitPrice: decimal.NewFromInt(200), Quantity: 1},
			},
			expected: Summary{
				Subtotal:    decimal.NewFromInt(200),
				ShippingFee: decimal.NewFromInt(25),
				Tax:         decimal.NewFromInt(10),
				Total:       decimal.NewFromInt(235),
				TotalItems:  1,
			},
		},
		{
			name: "zero quantity items are excluded from aggregation",
			items: []LineItem{
				{UnitPrice: decimal.NewFromInt(50), Quantity: 2},
				{UnitPrice: decimal.NewFromInt(999), Quantity: 0},
			},
			expected: Summary{
				Subtotal:    decimal.NewFromInt(100),
				ShippingFee: decimal.NewFromInt(25),
				Tax:         decimal.NewFromInt(5),
				Total:       decimal.NewFromInt(130),
				TotalItems:  2,
			},
		},
	}

	calc := NewCalculator(testRule())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := calc.Summarize(tt.items)
			assert.True(t, tt.expected.Subtotal.Equal(actual.Subtotal),
				"subtotal expected=%s actual=%s", tt.expected.Subtotal, actual.Subtotal)
			assert.True(t, tt.expected.ShippingFee.Equal(actual.ShippingFee),
				"shipping expected=%s actual=%s", tt.expected.ShippingFee, actual.ShippingFee)
			assert.True(t, tt.expected.Tax.Equal(actual.Tax),
				"tax expected=%s actual=%s", tt.expected.Tax, actual.Tax)
			assert.True(t, tt.expected.Total.Equal(actual.Total),
				"total expected=%s actual=%s", tt.expected.Total, actual.Total)
			assert.Equal(t, tt.expected.TotalItems, actual.TotalItems)
		})
	}
}

func TestSummarizeTotalInvariant(t *testing.T) {
	calc := NewCalculator(testRule())
	carts := [][]LineItem{
		{{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3}},
		{{UnitPrice: decimal.RequireFromString("0.01"), Quantity: 1}},
		{
			{UnitPrice: decimal.RequireFromString("74.50"), Quantity: 2},
			{UnitPrice: decimal.RequireFromString("120.00"), Quantity: 1},
		},
	}
	for _, items := range carts {
		summary := calc.Summarize(items)
		expected := summary.Subtotal.Add(summary.ShippingFee).Add(summary.Tax)
		assert.True(t, expected.Equal(summary.Total),
			"total must equal subtotal+shipping+tax, got %s != %s", summary.Total, expected)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(13000), MinorUnits(decimal.NewFromInt(130)))
	assert.Equal(t, int64(21525), MinorUnits(decimal.RequireFromString("215.25")))
	assert.Equal(t, int64(1000), MinorUnits(decimal.RequireFromString("9.995")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
