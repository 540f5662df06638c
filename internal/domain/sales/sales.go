// Package sales builds the monthly analytics rollups: product sales
// summed per vendor over a calendar month, and the outstanding member
// store-credit balances. Amounts stay decimal end to end; nothing here
// touches floats.
package sales

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ffcsa/reports/internal/domain/order"
)

// VendorTotal is one vendor's product sales over the reporting month.
type VendorTotal struct {
	Vendor string
	Total  decimal.Decimal
}

// VendorSummary is the monthly vendor sales rollup.
type VendorSummary struct {
	Vendors []VendorTotal
	Total   decimal.Decimal
}

// SummarizeVendors sums product subtotals per vendor, highest first.
// Membership billing rows carry no product and are excluded, matching
// every other per-vendor view.
func SummarizeVendors(lines []order.OrderLine) VendorSummary {
	totals := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if line.IsMembership() || line.Vendor == "" {
			continue
		}
		totals[line.Vendor] = totals[line.Vendor].Add(line.Subtotal)
	}

	summary := VendorSummary{Vendors: make([]VendorTotal, 0, len(totals))}
	for vendor, total := range totals {
		summary.Vendors = append(summary.Vendors, VendorTotal{Vendor: vendor, Total: total})
		summary.Total = summary.Total.Add(total)
	}
	sort.Slice(summary.Vendors, func(i, j int) bool {
		if !summary.Vendors[i].Total.Equal(summary.Vendors[j].Total) {
			return summary.Vendors[i].Total.GreaterThan(summary.Vendors[j].Total)
		}
		return summary.Vendors[i].Vendor < summary.Vendors[j].Vendor
	})
	return summary
}

// CustomerBalance is one member's outstanding store credit.
type CustomerBalance struct {
	Customer string
	Balance  decimal.Decimal
}

// BalanceSummary is the monthly member balance rollup.
type BalanceSummary struct {
	Customers []CustomerBalance
	Total     decimal.Decimal
}

// SummarizeBalances orders member balances highest first and totals
// them. Zero balances are dropped; the sheet tracks money the farm owes
// members, not the whole customer list.
func SummarizeBalances(balances []CustomerBalance) BalanceSummary {
	summary := BalanceSummary{Customers: make([]CustomerBalance, 0, len(balances))}
	for _, b := range balances {
		if b.Balance.IsZero() {
			continue
		}
		summary.Customers = append(summary.Customers, b)
		summary.Total = summary.Total.Add(b.Balance)
	}
	sort.Slice(summary.Customers, func(i, j int) bool {
		if !summary.Customers[i].Balance.Equal(summary.Customers[j].Balance) {
			return summary.Customers[i].Balance.GreaterThan(summary.Customers[j].Balance)
		}
		return summary.Customers[i].Customer < summary.Customers[j].Customer
	})
	return summary
}
