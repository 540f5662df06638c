package order

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ffcsa/reports/internal/domain/packing"
)

// Export column names as they appear in the Local Line orders list export.
// Lookups are header-driven; a missing column reads as the empty string.
const (
	ColOrder              = "Order"
	ColEmail              = "Email"
	ColLastName           = "Last Name"
	ColFirstName          = "First Name"
	ColPhone              = "Phone"
	ColFulfillmentName    = "Fulfillment Name"
	ColFulfillmentAddress = "Fulfillment Address"
	ColFulfillmentDate    = "Fulfillment Date"
	ColFulfillmentType    = "Fulfillment Type"
	ColPickupStartTime    = "Fulfillment - Pickup Start Time"
	ColPickupEndTime      = "Fulfillment - Pickup End Time"
	ColProductID          = "Product ID"
	ColProduct            = "Product"
	ColPackageName        = "Package Name"
	ColItemUnit           = "Item Unit"
	ColVendor             = "Vendor"
	ColCategory           = "Category"
	ColQuantity           = "Quantity"
	ColNumItems           = "# of Items"
	ColProductSubtotal    = "Product Subtotal"
	ColPackingTag         = "Packing Tag"
	ColCustomerNote       = "Customer Note"
	ColPriceList          = "Price List"
	ColCompany            = "About This Customer"
)

// CategoryMembership marks subscription billing rows. They carry no physical
// items and are excluded from all packing views.
const CategoryMembership = "Membership"

// OrderLine is one row of the orders export after the parse boundary has
// applied all defaulting, trimming and quantity normalization. Downstream
// stages never re-inspect raw export strings.
type OrderLine struct {
	OrderID            string
	Email              string
	LastName           string
	FirstName          string
	Phone              string
	DropsiteName       string
	DropsiteAddress    string
	FulfillmentDate    string
	FulfillmentType    string
	PickupStartTime    string
	PickupEndTime      string
	ProductID          string
	ProductName        string
	PackageName        string
	ItemUnit           string
	Vendor             string
	Category           string
	Quantity           int
	// Subtotal is the line's product subtotal in dollars; the monthly
	// vendor sales rollup sums it per vendor.
	Subtotal           decimal.Decimal
	PackingTag         string
	CustomerNote       string
	PriceList          string
	Company            string

	// Disposition is assigned once per run by the resolver and is immutable
	// for the lifetime of the line within that run.
	Disposition packing.Disposition
}

// FromRow converts a string-keyed export row into an OrderLine. The second
// return value is false when the row must be skipped: a line without a
// dropsite or any customer identity cannot be placed anywhere.
func FromRow(row map[string]string) (OrderLine, bool) {
	get := func(col string) string { return strings.TrimSpace(row[col]) }

	line := OrderLine{
		OrderID:         get(ColOrder),
		Email:           get(ColEmail),
		LastName:        get(ColLastName),
		FirstName:       get(ColFirstName),
		Phone:           get(ColPhone),
		DropsiteName:    get(ColFulfillmentName),
		DropsiteAddress: get(ColFulfillmentAddress),
		FulfillmentDate: get(ColFulfillmentDate),
		FulfillmentType: get(ColFulfillmentType),
		PickupStartTime: get(ColPickupStartTime),
		PickupEndTime:   get(ColPickupEndTime),
		ProductID:       normalizeProductID(get(ColProductID)),
		ProductName:     get(ColProduct),
		PackageName:     get(ColPackageName),
		ItemUnit:        get(ColItemUnit),
		Vendor:          get(ColVendor),
		Category:        get(ColCategory),
		PackingTag:      get(ColPackingTag),
		CustomerNote:    get(ColCustomerNote),
		PriceList:       get(ColPriceList),
		Company:         get(ColCompany),
		Disposition:     packing.DispositionTote,
	}

	if line.DropsiteName == "" {
		return OrderLine{}, false
	}
	if line.LastName == "" && line.FirstName == "" && line.Email == "" {
		return OrderLine{}, false
	}

	line.Quantity = normalizeQuantity(get(ColQuantity), get(ColNumItems))
	line.Subtotal = ParseAmount(get(ColProductSubtotal))

	return line, true
}

// IsMembership reports whether the line is a subscription billing row.
func (l OrderLine) IsMembership() bool {
	return l.Category == CategoryMembership
}

// DisplayName returns the "Last, First" presentation of the customer.
func (l OrderLine) DisplayName() string {
	return l.LastName + ", " + l.FirstName
}

// CustomerKey is the manifest grouping key: name plus formatted phone. Two
// lines share a customer bucket iff this composite key is identical; email
// is intentionally not part of it (exports contain duplicate and missing
// emails, while name+phone matches how pickup sheets are read).
func (l OrderLine) CustomerKey() string {
	return l.DisplayName() + "\n" + FormatPhone(l.Phone)
}

// ProductLabel is the "Product - Package" presentation used on packlists
// and delivery orders.
func (l OrderLine) ProductLabel() string {
	return l.ProductName + " - " + l.PackageName
}

// normalizeQuantity rounds the raw quantity to the nearest integer and
// applies the bundle fixup: package products report quantity 1 with the
// true item count in "# of Items".
func normalizeQuantity(rawQuantity, rawNumItems string) int {
	quantity := roundField(rawQuantity)
	numItems := roundField(rawNumItems)
	if numItems > 1 && quantity == 1 {
		return numItems
	}
	if quantity < 0 {
		return 0
	}
	return quantity
}

// roundField parses a possibly-fractional export field ("2.0", "6") to the
// nearest integer. Blank or unparsable fields read as zero.
func roundField(raw string) int {
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return int(d.Round(0).IntPart())
}

// ParseAmount reads a dollar export field ("$12.50", "1,200.00") as a
// decimal. Blank or unparsable fields read as zero.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeProductID strips a trailing decimal part ("1023667.0" appears in
// some exports) so override lookups and tag lists agree on the key.
func normalizeProductID(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
