// Package manifest implements the order disposition and grouping pipeline:
// flat export rows are partitioned into dropsite → customer → item
// hierarchies, rolled up by packing disposition, and paginated for print.
// Every stage is a pure, total function over in-memory slices; reports that
// need a grouping rebuild it from the raw rows rather than sharing
// intermediate structures.
package manifest

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
)

// CustomerGroup holds one customer's lines at one dropsite, in input order.
type CustomerGroup struct {
	// Key is the composite name+phone bucket key.
	Key string
	// Name is the "Last, First" display form.
	Name string
	// Phone is the formatted phone number.
	Phone string
	Lines []order.OrderLine
}

// DropsiteGroup holds a dropsite's customers in last-name order.
type DropsiteGroup struct {
	Name      string
	Customers []CustomerGroup
}

// Suppressed reports whether the dropsite is excluded from printed
// manifests. Membership-purchase dropsites are electronic fulfillments:
// they stay in the underlying data and the master totals but produce no
// printed pages.
func (g DropsiteGroup) Suppressed() bool {
	return IsSuppressedDropsite(g.Name)
}

// IsSuppressedDropsite matches dropsite names excluded from print output.
func IsSuppressedDropsite(name string) bool {
	return strings.Contains(strings.ToLower(name), "membership purchase")
}

// AssignDispositions returns a copy of lines with each line's disposition
// resolved against the override table. Input is never mutated.
func AssignDispositions(lines []order.OrderLine, overrides packing.Overrides) []order.OrderLine {
	out := make([]order.OrderLine, len(lines))
	for i, line := range lines {
		line.Disposition = packing.Resolve(line.ProductID, line.ProductName, line.PackingTag, overrides)
		out[i] = line
	}
	return out
}

// Group builds the dropsite → customer hierarchy. Lines are ordered by
// dropsite name then customer last name (locale-aware compare, so the
// printed manifests read alphabetically), membership billing rows are
// dropped, and ordering is carried by explicit slices rather than map
// iteration. Grouping the same input twice yields the identical structure.
func Group(lines []order.OrderLine) []DropsiteGroup {
	filtered := make([]order.OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.DropsiteName == "" || line.IsMembership() {
			continue
		}
		filtered = append(filtered, line)
	}

	c := collate.New(language.English)
	sort.SliceStable(filtered, func(i, j int) bool {
		if cmp := c.CompareString(filtered[i].DropsiteName, filtered[j].DropsiteName); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(filtered[i].LastName, filtered[j].LastName) < 0
	})

	var groups []DropsiteGroup
	dropsiteIdx := make(map[string]int)
	customerIdx := make(map[string]map[string]int)

	for _, line := range filtered {
		di, ok := dropsiteIdx[line.DropsiteName]
		if !ok {
			di = len(groups)
			dropsiteIdx[line.DropsiteName] = di
			customerIdx[line.DropsiteName] = make(map[string]int)
			groups = append(groups, DropsiteGroup{Name: line.DropsiteName})
		}

		key := line.CustomerKey()
		ci, ok := customerIdx[line.DropsiteName][key]
		if !ok {
			ci = len(groups[di].Customers)
			customerIdx[line.DropsiteName][key] = ci
			groups[di].Customers = append(groups[di].Customers, CustomerGroup{
				Key:   key,
				Name:  line.DisplayName(),
				Phone: order.FormatPhone(line.Phone),
			})
		}

		groups[di].Customers[ci].Lines = append(groups[di].Customers[ci].Lines, line)
	}

	return groups
}
