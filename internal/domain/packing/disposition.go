// Package packing decides which physical container an order line ships in:
// the refrigerated dairy crate, the frozen cooler bag, or the default tote.
package packing

import "strings"

// Disposition is the packing category assigned to an order line.
type Disposition string

const (
	DispositionDairy  Disposition = "dairy"
	DispositionFrozen Disposition = "frozen"
	DispositionTote   Disposition = "tote"
)

// AllDispositions returns the dispositions in packlist print order.
func AllDispositions() []Disposition {
	return []Disposition{DispositionFrozen, DispositionDairy, DispositionTote}
}

// ParseDisposition parses a disposition string case-insensitively. The
// second return value is false for anything that is not one of the three
// categories.
func ParseDisposition(s string) (Disposition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dairy":
		return DispositionDairy, true
	case "frozen":
		return DispositionFrozen, true
	case "tote":
		return DispositionTote, true
	}
	return "", false
}

// Title returns the capitalized form used in report headings.
func (d Disposition) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// Resolve decides the disposition for one order line. Resolution is total:
// it always returns exactly one of the three categories and has no failure
// path. Precedence is manual override first, then the product's packing
// tag, then the tote default.
func Resolve(productID, productName, packingTag string, overrides Overrides) Disposition {
	if d, ok := overrides.Lookup(productID, productName); ok {
		return d
	}

	switch strings.ToLower(strings.TrimSpace(packingTag)) {
	case "dairy":
		return DispositionDairy
	case "frozen":
		return DispositionFrozen
	}
	return DispositionTote
}
