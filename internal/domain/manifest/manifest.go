package manifest

import (
	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
)

// CustomerRow is one printed manifest line: a customer and their counts.
type CustomerRow struct {
	Name   string
	Counts DispositionCounts
}

// DropsiteManifest is one dropsite's printed section. Pages is empty for
// suppressed dropsites; Totals is populated either way so the master
// manifest still accounts for them.
type DropsiteManifest struct {
	Name       string
	Rows       []CustomerRow
	Pages      [][]CustomerRow
	Totals     DispositionCounts
	Suppressed bool
}

// MasterRow is one line of the master manifest: a dropsite and its totals.
type MasterRow struct {
	Dropsite string
	Counts   DispositionCounts
}

// Manifest is the full checklist output: per-dropsite sections, the master
// rollup and the grand total.
type Manifest struct {
	Dropsites []DropsiteManifest
	Master    []MasterRow
	Grand     DispositionCounts
}

// Build runs the whole pipeline for the checklist report: resolve
// dispositions, group, aggregate and paginate. What gets totaled diverges
// deliberately from what gets printed: suppressed dropsites contribute to
// Master and Grand but have no Pages.
func Build(lines []order.OrderLine, overrides packing.Overrides) Manifest {
	groups := Group(AssignDispositions(lines, overrides))

	m := Manifest{}
	for _, group := range groups {
		section := DropsiteManifest{
			Name:       group.Name,
			Suppressed: group.Suppressed(),
		}
		for _, customer := range group.Customers {
			section.Rows = append(section.Rows, CustomerRow{
				Name:   customer.Key,
				Counts: AggregateCustomer(customer.Lines),
			})
		}
		section.Totals = group.Totals()
		if !section.Suppressed {
			section.Pages = Paginate(section.Rows, RowsPerPage)
		}

		m.Dropsites = append(m.Dropsites, section)
		m.Master = append(m.Master, MasterRow{Dropsite: group.Name, Counts: section.Totals})
		m.Grand = m.Grand.Add(section.Totals)
	}

	return m
}

// PacklistRow is one line of a disposition-filtered packlist. Divider rows
// separate customers on the printed table.
type PacklistRow struct {
	Name     string
	Product  string
	Unit     string
	Quantity int
	Divider  bool
}

// PacklistSection is one dropsite's packlist for a single disposition.
type PacklistSection struct {
	Dropsite    string
	Disposition packing.Disposition
	Pages       [][]PacklistRow
}

// Packlist builds the per-product detail list for one disposition across
// all dropsites: every qualifying line for every customer, customers
// separated by divider rows, paginated per dropsite. Dropsites with no
// qualifying lines are omitted.
func Packlist(groups []DropsiteGroup, disposition packing.Disposition) []PacklistSection {
	var sections []PacklistSection

	for _, group := range groups {
		if group.Suppressed() {
			continue
		}

		var rows []PacklistRow
		for _, customer := range group.Customers {
			var customerRows []PacklistRow
			for _, line := range customer.Lines {
				if line.Disposition != disposition {
					continue
				}
				customerRows = append(customerRows, PacklistRow{
					Name:     customer.Name,
					Product:  line.ProductLabel(),
					Unit:     line.ItemUnit,
					Quantity: line.Quantity,
				})
			}
			if len(customerRows) == 0 {
				continue
			}
			if len(rows) > 0 {
				rows = append(rows, PacklistRow{Divider: true})
			}
			rows = append(rows, customerRows...)
		}

		if len(rows) == 0 {
			continue
		}
		sections = append(sections, PacklistSection{
			Dropsite:    group.Name,
			Disposition: disposition,
			Pages:       Paginate(rows, RowsPerPage),
		})
	}

	return sections
}
