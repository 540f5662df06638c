package reports

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
	"github.com/ffcsa/reports/internal/infrastructure/excel"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
)

// routeExcludedAddresses filters stops at the output stage: the farm's own
// address and electronic fulfillments never ride on the route sheet.
var routeExcludedAddresses = []string{"25362 High Pass", "ONLINE DELIVERY"}

// BuildRouteStops groups resolved order lines into route stops, one per
// customer and delivery address. Dropsite pickups are labeled with the
// dropsite name and carry the site's pickup instructions; home deliveries
// carry the customer's own delivery notes. Tote and frozen are presence
// flags; dairy sums item quantity.
func BuildRouteStops(lines []order.OrderLine, strategies localline.StrategyIndex) []excel.RouteStop {
	c := collate.New(language.English)
	sorted := append([]order.OrderLine(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].DropsiteName, sorted[j].DropsiteName) < 0
	})

	type stopKey struct {
		customer string
		address  string
	}
	index := make(map[stopKey]*excel.RouteStop)
	var keys []stopKey

	for _, line := range sorted {
		customer := line.DisplayName()
		key := stopKey{
			customer: strings.ToLower(customer),
			address:  strings.ToLower(line.DropsiteAddress),
		}

		stop, ok := index[key]
		if !ok {
			stop = &excel.RouteStop{
				NameOrDropsite: customer,
				Phone:          order.FormatPhone(line.Phone),
				Address:        line.DropsiteAddress,
				Instructions:   line.Company,
			}
			if strings.EqualFold(line.FulfillmentType, "pickup") {
				stop.NameOrDropsite = fmt.Sprintf("%s Dropsite (%s)", line.DropsiteName, customer)
				stop.Instructions = strategies.InstructionsFor(line.DropsiteName)
			}
			index[key] = stop
			keys = append(keys, key)
		}

		switch line.Disposition {
		case packing.DispositionTote:
			stop.Tote = true
		case packing.DispositionFrozen:
			stop.Frozen = true
		case packing.DispositionDairy:
			stop.Dairy += line.Quantity
		}
	}

	var stops []excel.RouteStop
	for _, key := range keys {
		stop := index[key]
		if routeAddressExcluded(stop.Address) {
			continue
		}
		stops = append(stops, *stop)
	}
	return stops
}

func routeAddressExcluded(address string) bool {
	for _, fragment := range routeExcludedAddresses {
		if strings.Contains(address, fragment) {
			return true
		}
	}
	return false
}
