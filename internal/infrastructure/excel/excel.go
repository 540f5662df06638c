// Package excel reads the spreadsheet exports the backoffice produces for
// product lists and writes the route-planning workbook consumed by the
// delivery routing service.
package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ProductIDHeader is the column the product exports carry their IDs in.
const ProductIDHeader = "Local Line Product ID"

// ReadProductIDColumn extracts one column of a product export spreadsheet,
// addressed by header name. Values are returned as trimmed strings with any
// trailing decimal part removed, so they can be matched against export
// product IDs directly.
func ReadProductIDColumn(data []byte, header string) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("excel: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel: sheet %q is empty", sheets[0])
	}

	col := -1
	for i, name := range rows[0] {
		if strings.TrimSpace(name) == header {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("excel: column %q not found", header)
	}

	var values []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		if i := strings.IndexByte(value, '.'); i >= 0 {
			value = value[:i]
		}
		values = append(values, value)
	}

	return values, nil
}

// RouteStop is one delivery stop on the route sheet. Tote and Frozen are
// presence flags; Dairy carries the summed item count.
type RouteStop struct {
	NameOrDropsite string
	Phone          string
	Address        string
	Instructions   string
	Tote           bool
	Frozen         bool
	Dairy          int
}

// routeHeader matches the column layout the routing service imports.
var routeHeader = []any{"name/dropsite", "Phone", "Address", "Instructions", "Tote", "Frozen", "Dairy"}

// BuildRouteSheet renders stops into a workbook. Presence flags render as 1
// or blank, and a zero dairy count renders blank, keeping the sheet readable
// at a glance.
func BuildRouteSheet(stops []RouteStop) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &routeHeader); err != nil {
		return nil, fmt.Errorf("excel: failed to write header: %w", err)
	}

	for i, stop := range stops {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excel: failed to address row %d: %w", i+2, err)
		}
		row := []any{
			stop.NameOrDropsite,
			stop.Phone,
			stop.Address,
			stop.Instructions,
			flagCell(stop.Tote),
			flagCell(stop.Frozen),
			countCell(stop.Dairy),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: failed to write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// WriteRouteSheet renders stops and saves the workbook to path.
func WriteRouteSheet(path string, stops []RouteStop) error {
	f, err := BuildRouteSheet(stops)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("excel: failed to save %s: %w", path, err)
	}
	return nil
}

func flagCell(set bool) any {
	if set {
		return 1
	}
	return ""
}

func countCell(n int) any {
	if n > 0 {
		return n
	}
	return ""
}
