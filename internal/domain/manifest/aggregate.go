package manifest

import (
	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
)

// DispositionCounts is one aggregated manifest cell group. Dairy is a
// summed quantity; tote and frozen are presence flags, since a customer gets
// at most one tote and one frozen bag no matter how many qualifying
// products they ordered.
type DispositionCounts struct {
	Tote   int
	Dairy  int
	Frozen int
}

// Add accumulates another counts value; used for the dropsite and grand
// rollups where tote/frozen become counts of customers.
func (c DispositionCounts) Add(other DispositionCounts) DispositionCounts {
	c.Tote += other.Tote
	c.Dairy += other.Dairy
	c.Frozen += other.Frozen
	return c
}

// IsZero reports whether nothing was aggregated.
func (c DispositionCounts) IsZero() bool {
	return c == DispositionCounts{}
}

// AggregateCustomer rolls one customer's lines up by disposition. The
// aggregation is idempotent over its input: rerunning on the same lines
// yields the same counts, and presence flags never exceed one.
func AggregateCustomer(lines []order.OrderLine) DispositionCounts {
	var counts DispositionCounts
	for _, line := range lines {
		switch line.Disposition {
		case packing.DispositionDairy:
			counts.Dairy += line.Quantity
		case packing.DispositionFrozen:
			counts.Frozen = 1
		case packing.DispositionTote:
			counts.Tote = 1
		}
	}
	return counts
}

// Totals sums the per-customer aggregates for a dropsite.
func (g DropsiteGroup) Totals() DispositionCounts {
	var totals DispositionCounts
	for _, customer := range g.Customers {
		totals = totals.Add(AggregateCustomer(customer.Lines))
	}
	return totals
}
