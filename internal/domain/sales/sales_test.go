package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffcsa/reports/internal/domain/order"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarizeVendors(t *testing.T) {
	lines := []order.OrderLine{
		{Vendor: "Creamy Cow", Subtotal: amount("12.50")},
		{Vendor: "Deck Family Farm", Subtotal: amount("40.00")},
		{Vendor: "Creamy Cow", Subtotal: amount("7.50")},
		{Vendor: "Deck Family Farm", Category: order.CategoryMembership, Subtotal: amount("250.00")},
		{Vendor: "", Subtotal: amount("5.00")},
	}

	summary := SummarizeVendors(lines)

	// Membership billing and vendorless rows stay out of the rollup.
	require.Len(t, summary.Vendors, 2)
	assert.Equal(t, "Deck Family Farm", summary.Vendors[0].Vendor)
	assert.True(t, summary.Vendors[0].Total.Equal(amount("40.00")))
	assert.Equal(t, "Creamy Cow", summary.Vendors[1].Vendor)
	assert.True(t, summary.Vendors[1].Total.Equal(amount("20.00")))
	assert.True(t, summary.Total.Equal(amount("60.00")))

	t.Run("ties break on vendor name", func(t *testing.T) {
		tied := SummarizeVendors([]order.OrderLine{
			{Vendor: "Bee Farm", Subtotal: amount("10")},
			{Vendor: "Apple Hill", Subtotal: amount("10")},
		})
		assert.Equal(t, "Apple Hill", tied.Vendors[0].Vendor)
	})

	t.Run("empty month", func(t *testing.T) {
		summary := SummarizeVendors(nil)
		assert.Empty(t, summary.Vendors)
		assert.True(t, summary.Total.IsZero())
	})
}

func TestSummarizeBalances(t *testing.T) {
	summary := SummarizeBalances([]CustomerBalance{
		{Customer: "Doe, Jane", Balance: amount("120.00")},
		{Customer: "Smith, Bob", Balance: amount("0")},
		{Customer: "Young, Al", Balance: amount("310.25")},
	})

	require.Len(t, summary.Customers, 2)
	assert.Equal(t, "Young, Al", summary.Customers[0].Customer)
	assert.Equal(t, "Doe, Jane", summary.Customers[1].Customer)
	assert.True(t, summary.Total.Equal(amount("430.25")))
}
