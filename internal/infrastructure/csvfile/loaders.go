package csvfile

import (
	"fmt"
	"io"
	"os"

	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/sales"
	"github.com/ffcsa/reports/internal/domain/vendor"
)

// Vendor reference list column names.
const (
	ColVendorName     = "Vendor"
	ColVendorLocation = "Location"
)

// Customers export column names.
const (
	ColCustomer    = "Customer"
	ColStoreCredit = "Store Credit"
)

// ParseOrderLines reads an orders list export into domain order lines.
// Rows the domain rejects (no dropsite, no customer identity) are skipped,
// matching how the export mixes fulfillment rows with billing artifacts.
func ParseOrderLines(r io.Reader) ([]order.OrderLine, error) {
	parser, err := NewParser(r)
	if err != nil {
		return nil, fmt.Errorf("orders export: %w", err)
	}
	if missing := parser.MissingHeaders(order.ColFulfillmentName, order.ColProduct); len(missing) > 0 {
		return nil, fmt.Errorf("orders export: missing columns %v", missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fmt.Errorf("orders export: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	lines := make([]order.OrderLine, 0, len(rows))
	for _, row := range rows {
		if line, ok := order.FromRow(row.Data); ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ParseVendorOrder reads the packout vendor order reference list.
func ParseVendorOrder(r io.Reader) ([]vendor.OrderEntry, error) {
	parser, err := NewParser(r)
	if err != nil {
		return nil, fmt.Errorf("vendor order list: %w", err)
	}
	if missing := parser.MissingHeaders(ColVendorName); len(missing) > 0 {
		return nil, fmt.Errorf("vendor order list: missing columns %v", missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fmt.Errorf("vendor order list: %w", err)
	}

	entries := make([]vendor.OrderEntry, 0, len(rows))
	for _, row := range rows {
		name := row.Get(ColVendorName)
		if name == "" {
			continue
		}
		entries = append(entries, vendor.OrderEntry{
			Vendor:   name,
			Location: row.Get(ColVendorLocation),
		})
	}
	return entries, nil
}

// ParseCustomerBalances reads the customers export into member store
// credit balances. Rows without a customer name are skipped.
func ParseCustomerBalances(r io.Reader) ([]sales.CustomerBalance, error) {
	parser, err := NewParser(r)
	if err != nil {
		return nil, fmt.Errorf("customers export: %w", err)
	}
	if missing := parser.MissingHeaders(ColCustomer, ColStoreCredit); len(missing) > 0 {
		return nil, fmt.Errorf("customers export: missing columns %v", missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, fmt.Errorf("customers export: %w", err)
	}

	balances := make([]sales.CustomerBalance, 0, len(rows))
	for _, row := range rows {
		name := row.Get(ColCustomer)
		if name == "" {
			continue
		}
		balances = append(balances, sales.CustomerBalance{
			Customer: name,
			Balance:  order.ParseAmount(row.Get(ColStoreCredit)),
		})
	}
	return balances, nil
}

// LoadVendorOrder reads the vendor order reference list from disk.
func LoadVendorOrder(path string) (*vendor.ReferenceList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vendor order list: %w", err)
	}
	defer f.Close()

	entries, err := ParseVendorOrder(f)
	if err != nil {
		return nil, err
	}
	return vendor.NewReferenceList(entries), nil
}
