package printing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ffcsa/reports/internal/domain/manifest"
	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
	"github.com/ffcsa/reports/internal/domain/sales"
	"github.com/ffcsa/reports/internal/domain/vendor"
)

// Sheet data structures bind domain aggregates to the embedded report
// templates. Builders here do presentation-only work: date formatting,
// page numbering, pickup-window strings. All grouping and aggregation
// happens in the domain packages.

// SheetMeta carries the header fields every report sheet shows.
type SheetMeta struct {
	// Title is the sheet heading, e.g. "Dairy Packlist".
	Title string
	// Date is the fulfillment date formatted for the sheet header.
	Date string
	// GeneratedAt is when the sheet was rendered.
	GeneratedAt string
}

// NewSheetMeta builds the common header block.
func NewSheetMeta(title string, fulfillmentDate time.Time) SheetMeta {
	return SheetMeta{
		Title:       title,
		Date:        fulfillmentDate.Format("Monday, January 2, 2006"),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}
}

// =============================================================================
// Checklist (dropsite manifests + master)
// =============================================================================

// ChecklistPage is one printed page of a dropsite manifest.
type ChecklistPage struct {
	Number int
	Total  int
	Rows   []manifest.CustomerRow
}

// ChecklistSection is one dropsite's run of pages.
type ChecklistSection struct {
	Dropsite string
	Pages    []ChecklistPage
	Totals   manifest.DispositionCounts
}

// ChecklistSheet is the full checklist document: per-dropsite manifests
// followed by the master page.
type ChecklistSheet struct {
	Meta     SheetMeta
	Sections []ChecklistSection
	Master   []manifest.MasterRow
	Grand    manifest.DispositionCounts
}

// BuildChecklistSheet converts a built manifest into template data.
// Suppressed dropsites have no pages and produce no section here; they
// still appear on the master rollup.
func BuildChecklistSheet(m manifest.Manifest, fulfillmentDate time.Time) ChecklistSheet {
	sheet := ChecklistSheet{
		Meta:   NewSheetMeta("Dropsite Checklists", fulfillmentDate),
		Master: m.Master,
		Grand:  m.Grand,
	}

	for _, d := range m.Dropsites {
		if d.Suppressed {
			continue
		}
		section := ChecklistSection{Dropsite: d.Name, Totals: d.Totals}
		for i, rows := range d.Pages {
			section.Pages = append(section.Pages, ChecklistPage{
				Number: i + 1,
				Total:  len(d.Pages),
				Rows:   rows,
			})
		}
		sheet.Sections = append(sheet.Sections, section)
	}

	return sheet
}

// ChecklistDocument is the full printed checklist run: the dropsite
// manifests and master page, followed by the frozen and dairy packlists.
// The whole document renders as one PDF so the crew prints a single file.
type ChecklistDocument struct {
	ChecklistSheet
	Packlists []PacklistSheet
}

// BuildChecklistDocument bundles the checklist with the frozen and dairy
// packlists built from the same grouping.
func BuildChecklistDocument(m manifest.Manifest, groups []manifest.DropsiteGroup, fulfillmentDate time.Time) ChecklistDocument {
	return ChecklistDocument{
		ChecklistSheet: BuildChecklistSheet(m, fulfillmentDate),
		Packlists: []PacklistSheet{
			BuildPacklistSheet(packing.DispositionFrozen, manifest.Packlist(groups, packing.DispositionFrozen), fulfillmentDate),
			BuildPacklistSheet(packing.DispositionDairy, manifest.Packlist(groups, packing.DispositionDairy), fulfillmentDate),
		},
	}
}

// =============================================================================
// Packlist (disposition-filtered detail)
// =============================================================================

// PacklistPage is one printed page of a packlist section.
type PacklistPage struct {
	Number int
	Total  int
	Rows   []manifest.PacklistRow
}

// PacklistSheetSection is one dropsite's packlist pages.
type PacklistSheetSection struct {
	Dropsite string
	Pages    []PacklistPage
}

// PacklistSheet is one disposition's packlist across all dropsites.
type PacklistSheet struct {
	Meta     SheetMeta
	Sections []PacklistSheetSection
}

// BuildPacklistSheet converts packlist sections into template data.
func BuildPacklistSheet(disposition packing.Disposition, sections []manifest.PacklistSection, fulfillmentDate time.Time) PacklistSheet {
	sheet := PacklistSheet{
		Meta: NewSheetMeta(packlistTitle(disposition), fulfillmentDate),
	}
	for _, s := range sections {
		section := PacklistSheetSection{Dropsite: s.Dropsite}
		for i, rows := range s.Pages {
			section.Pages = append(section.Pages, PacklistPage{
				Number: i + 1,
				Total:  len(s.Pages),
				Rows:   rows,
			})
		}
		sheet.Sections = append(sheet.Sections, section)
	}
	return sheet
}

func packlistTitle(d packing.Disposition) string {
	switch d {
	case packing.DispositionDairy:
		return "Dairy Packlist"
	case packing.DispositionFrozen:
		return "Frozen Packlist"
	default:
		return "Tote Packlist"
	}
}

// =============================================================================
// Delivery orders (per-customer item sheets)
// =============================================================================

// DeliveryOrder is one customer's sheet: contact block plus item tables
// bucketed by warehouse section.
type DeliveryOrder struct {
	Customer     string
	Phone        string
	Email        string
	Dropsite     string
	PickupWindow string
	Note         string
	Sections     []vendor.ItemSection
}

// DeliveryOrdersSheet is one page per customer, in dropsite order.
type DeliveryOrdersSheet struct {
	Meta   SheetMeta
	Orders []DeliveryOrder
}

// BuildDeliveryOrdersSheet builds one delivery order per customer from
// grouped lines, items sorted into packout order by the vendor reference
// list. Suppressed dropsites are skipped.
func BuildDeliveryOrdersSheet(groups []manifest.DropsiteGroup, ref *vendor.ReferenceList, fulfillmentDate time.Time) DeliveryOrdersSheet {
	sheet := DeliveryOrdersSheet{
		Meta: NewSheetMeta("Delivery Orders", fulfillmentDate),
	}

	for _, group := range groups {
		if group.Suppressed() {
			continue
		}
		for _, customer := range group.Customers {
			do := DeliveryOrder{
				Customer: customer.Name,
				Phone:    customer.Phone,
				Dropsite: group.Name,
				Sections: ref.GroupBySection(customer.Lines),
			}
			if len(customer.Lines) > 0 {
				first := customer.Lines[0]
				do.Email = first.Email
				do.PickupWindow = pickupWindow(first)
				do.Note = first.CustomerNote
			}
			sheet.Orders = append(sheet.Orders, do)
		}
	}

	return sheet
}

func pickupWindow(line order.OrderLine) string {
	if line.PickupStartTime == "" || line.PickupEndTime == "" {
		return ""
	}
	return line.PickupStartTime + " - " + line.PickupEndTime
}

// =============================================================================
// Customer notes
// =============================================================================

// CustomerNote is one note row on the notes sheet.
type CustomerNote struct {
	Customer string
	Dropsite string
	Note     string
}

// CustomerNotesSheet lists every order note left this cycle.
type CustomerNotesSheet struct {
	Meta  SheetMeta
	Notes []CustomerNote
}

// BuildCustomerNotesSheet collects non-empty customer notes in dropsite
// order, one row per customer per distinct note.
func BuildCustomerNotesSheet(groups []manifest.DropsiteGroup, fulfillmentDate time.Time) CustomerNotesSheet {
	sheet := CustomerNotesSheet{
		Meta: NewSheetMeta("Customer Notes", fulfillmentDate),
	}

	for _, group := range groups {
		for _, customer := range group.Customers {
			seen := make(map[string]bool)
			for _, line := range customer.Lines {
				note := line.CustomerNote
				if note == "" || seen[note] {
					continue
				}
				seen[note] = true
				sheet.Notes = append(sheet.Notes, CustomerNote{
					Customer: customer.Name,
					Dropsite: group.Name,
					Note:     note,
				})
			}
		}
	}

	return sheet
}

// =============================================================================
// Setup (packout totals by location and vendor)
// =============================================================================

// SetupSheet is the warehouse packout setup report.
type SetupSheet struct {
	Meta     SheetMeta
	Sections []vendor.SetupSection
}

// BuildSetupSheet wraps setup sections with the sheet header.
func BuildSetupSheet(sections []vendor.SetupSection, fulfillmentDate time.Time) SetupSheet {
	return SetupSheet{
		Meta:     NewSheetMeta("Packout Setup", fulfillmentDate),
		Sections: sections,
	}
}

// =============================================================================
// Vendor orders (per-vendor supply totals)
// =============================================================================

// VendorOrdersSheet lists what each vendor needs to supply for the cycle.
type VendorOrdersSheet struct {
	Meta    SheetMeta
	Vendors []vendor.VendorProducts
}

// BuildVendorOrdersSheet wraps vendor order totals with the sheet header.
func BuildVendorOrdersSheet(vendors []vendor.VendorProducts, fulfillmentDate time.Time) VendorOrdersSheet {
	return VendorOrdersSheet{
		Meta:    NewSheetMeta("Vendor Orders", fulfillmentDate),
		Vendors: vendors,
	}
}

// =============================================================================
// Monthly analytics (vendor sales, member balances)
// =============================================================================

// MonthlyVendorRow is one vendor's formatted sales line.
type MonthlyVendorRow struct {
	Vendor string
	Total  string
}

// MonthlyVendorsSheet is the monthly vendor sales report.
type MonthlyVendorsSheet struct {
	Meta  SheetMeta
	Rows  []MonthlyVendorRow
	Total string
}

// BuildMonthlyVendorsSheet formats the vendor sales rollup for print.
func BuildMonthlyVendorsSheet(summary sales.VendorSummary, monthEnd time.Time) MonthlyVendorsSheet {
	sheet := MonthlyVendorsSheet{
		Meta:  NewSheetMeta("Monthly Vendor Sales", monthEnd),
		Rows:  make([]MonthlyVendorRow, 0, len(summary.Vendors)),
		Total: formatDollars(summary.Total),
	}
	for _, v := range summary.Vendors {
		sheet.Rows = append(sheet.Rows, MonthlyVendorRow{
			Vendor: v.Vendor,
			Total:  formatDollars(v.Total),
		})
	}
	return sheet
}

// MonthlyBalanceRow is one member's formatted store credit line.
type MonthlyBalanceRow struct {
	Customer string
	Balance  string
}

// MonthlyCustomersSheet is the member balance report.
type MonthlyCustomersSheet struct {
	Meta    SheetMeta
	Rows    []MonthlyBalanceRow
	Members int
	Total   string
}

// BuildMonthlyCustomersSheet formats the member balance rollup for print.
func BuildMonthlyCustomersSheet(summary sales.BalanceSummary, asOf time.Time) MonthlyCustomersSheet {
	sheet := MonthlyCustomersSheet{
		Meta:    NewSheetMeta("Monthly Member Balances", asOf),
		Rows:    make([]MonthlyBalanceRow, 0, len(summary.Customers)),
		Members: len(summary.Customers),
		Total:   formatDollars(summary.Total),
	}
	for _, c := range summary.Customers {
		sheet.Rows = append(sheet.Rows, MonthlyBalanceRow{
			Customer: c.Customer,
			Balance:  formatDollars(c.Balance),
		})
	}
	return sheet
}

func formatDollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// =============================================================================
// Labels (tote labels per customer)
// =============================================================================

// ToteLabel is one printed tote label: the customer, their dropsite in the
// dropsite's color, and the count badges the packers check against.
type ToteLabel struct {
	Dropsite string
	Customer string
	// Color is the dropsite's pastel background, as a CSS color value.
	Color  string
	Counts manifest.DispositionCounts
}

// LabelSheet is the full run of tote labels, dropsite order.
type LabelSheet struct {
	Meta   SheetMeta
	Labels []ToteLabel
}

// defaultLabelColor is used for dropsites missing from the color table.
const defaultLabelColor = "#ffffff"

// BuildLabelSheet emits one label per customer with anything to pack.
// Colors come from the dropsite color table so every site's totes are
// visually distinct on the loading dock.
func BuildLabelSheet(groups []manifest.DropsiteGroup, colors map[string]string, fulfillmentDate time.Time) LabelSheet {
	sheet := LabelSheet{
		Meta: NewSheetMeta("Tote Labels", fulfillmentDate),
	}

	for _, group := range groups {
		if group.Suppressed() {
			continue
		}
		color, ok := colors[group.Name]
		if !ok {
			color = defaultLabelColor
		}
		for _, customer := range group.Customers {
			counts := manifest.AggregateCustomer(customer.Lines)
			if counts.IsZero() {
				continue
			}
			sheet.Labels = append(sheet.Labels, ToteLabel{
				Dropsite: group.Name,
				Customer: customer.Name,
				Color:    color,
				Counts:   counts,
			})
		}
	}

	return sheet
}
