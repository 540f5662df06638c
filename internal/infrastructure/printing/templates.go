package printing

import (
	"embed"
	"sort"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names for the embedded report sheets.
const (
	TemplateChecklist      = "checklist"
	TemplatePacklist       = "packlist"
	TemplateDeliveryOrders = "delivery_orders"
	TemplateCustomerNotes  = "customer_notes"
	TemplateSetup          = "setup"
	TemplateLabels         = "labels"
	TemplateVendorOrders   = "vendor_orders"

	TemplateMonthlyVendors   = "monthly_vendors"
	TemplateMonthlyCustomers = "monthly_customers"
)

// ReportTemplate describes one embedded sheet template and the page setup
// it prints with.
type ReportTemplate struct {
	Name        string
	Description string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	FilePath    string // Path within embed.FS
}

// reportTemplates is the registry of embedded sheet templates.
var reportTemplates = map[string]ReportTemplate{
	TemplateChecklist: {
		Name:        TemplateChecklist,
		Description: "Per-dropsite pickup manifests with the master rollup page",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/checklist.html",
	},
	TemplatePacklist: {
		Name:        TemplatePacklist,
		Description: "Disposition-filtered item detail per dropsite",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/packlist.html",
	},
	TemplateDeliveryOrders: {
		Name:        TemplateDeliveryOrders,
		Description: "One item sheet per customer, sectioned by warehouse area",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/delivery_orders.html",
	},
	TemplateCustomerNotes: {
		Name:        TemplateCustomerNotes,
		Description: "All order notes left by customers this cycle",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/customer_notes.html",
	},
	TemplateSetup: {
		Name:        TemplateSetup,
		Description: "Packout totals grouped by warehouse location and vendor",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/setup.html",
	},
	TemplateVendorOrders: {
		Name:        TemplateVendorOrders,
		Description: "Per-vendor supply totals for the cycle",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/vendor_orders.html",
	},
	TemplateMonthlyVendors: {
		Name:        TemplateMonthlyVendors,
		Description: "Product sales per vendor over the previous month",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/monthly_vendors.html",
	},
	TemplateMonthlyCustomers: {
		Name:        TemplateMonthlyCustomers,
		Description: "Outstanding member store credit balances",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		FilePath:    "templates/monthly_customers.html",
	},
	TemplateLabels: {
		Name:        TemplateLabels,
		Description: "Color-coded tote labels, one per customer",
		PaperSize:   PaperSizeLetter,
		Orientation: OrientationLandscape,
		Margins:     LabelMargins(),
		FilePath:    "templates/labels.html",
	},
}

// GetReportTemplate returns the template descriptor for a sheet name.
func GetReportTemplate(name string) (ReportTemplate, bool) {
	t, ok := reportTemplates[name]
	return t, ok
}

// TemplateNames returns the registered sheet names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(reportTemplates))
	for name := range reportTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupTemplate loads the embedded template content for a sheet name.
func lookupTemplate(name string) (string, bool) {
	t, ok := reportTemplates[name]
	if !ok {
		return "", false
	}
	content, err := templateFS.ReadFile(t.FilePath)
	if err != nil {
		return "", false
	}
	return string(content), true
}
