package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
)

func routeLine(dropsite, address, fulfillmentType, last, first string, disposition packing.Disposition, qty int) order.OrderLine {
	return order.OrderLine{
		DropsiteName:    dropsite,
		DropsiteAddress: address,
		FulfillmentType: fulfillmentType,
		LastName:        last,
		FirstName:       first,
		Phone:           "5415550134",
		Quantity:        qty,
		Disposition:     disposition,
	}
}

func testStrategies() localline.StrategyIndex {
	return localline.NewStrategyIndex([]localline.FulfillmentStrategy{
		{
			Name: "Oak St",
			Availability: localline.StrategyAvailability{
				Instructions: "Behind the blue gate",
			},
		},
	})
}

func TestBuildRouteStops(t *testing.T) {
	t.Run("merges a customer's lines into one stop", func(t *testing.T) {
		lines := []order.OrderLine{
			routeLine("Oak St", "123 Oak Ave", "pickup", "Doe", "Jane", packing.DispositionDairy, 2),
			routeLine("Oak St", "123 Oak Ave", "pickup", "Doe", "Jane", packing.DispositionDairy, 3),
			routeLine("Oak St", "123 Oak Ave", "pickup", "Doe", "Jane", packing.DispositionFrozen, 1),
		}

		stops := BuildRouteStops(lines, testStrategies())

		require.Len(t, stops, 1)
		stop := stops[0]
		assert.Equal(t, "Oak St Dropsite (Doe, Jane)", stop.NameOrDropsite)
		assert.Equal(t, "(541) 555-0134", stop.Phone)
		assert.Equal(t, "Behind the blue gate", stop.Instructions)
		assert.Equal(t, 5, stop.Dairy)
		assert.True(t, stop.Frozen)
		assert.False(t, stop.Tote)
	})

	t.Run("home deliveries carry the customer's own notes", func(t *testing.T) {
		line := routeLine("Home Delivery - Eugene", "455 River Rd", "delivery", "Smith", "Bob", packing.DispositionTote, 1)
		line.Company = "Gate code 4411"

		stops := BuildRouteStops([]order.OrderLine{line}, testStrategies())

		require.Len(t, stops, 1)
		assert.Equal(t, "Smith, Bob", stops[0].NameOrDropsite)
		assert.Equal(t, "Gate code 4411", stops[0].Instructions)
		assert.True(t, stops[0].Tote)
	})

	t.Run("excluded addresses are dropped at the output stage", func(t *testing.T) {
		lines := []order.OrderLine{
			routeLine("Deck Family Farm", "25362 High Pass Rd", "pickup", "Doe", "Jane", packing.DispositionTote, 1),
			routeLine("FFCSA Membership Purchase", "ONLINE DELIVERY", "delivery", "Adams", "Amy", packing.DispositionTote, 1),
			routeLine("Oak St", "123 Oak Ave", "pickup", "Smith", "Bob", packing.DispositionTote, 1),
		}

		stops := BuildRouteStops(lines, testStrategies())

		require.Len(t, stops, 1)
		assert.Equal(t, "Oak St Dropsite (Smith, Bob)", stops[0].NameOrDropsite)
	})

	t.Run("stops come out in dropsite order", func(t *testing.T) {
		lines := []order.OrderLine{
			routeLine("Pine Ave", "9 Pine Ave", "pickup", "Zed", "Zoe", packing.DispositionTote, 1),
			routeLine("Oak St", "123 Oak Ave", "pickup", "Doe", "Jane", packing.DispositionTote, 1),
		}

		stops := BuildRouteStops(lines, testStrategies())

		require.Len(t, stops, 2)
		assert.Contains(t, stops[0].NameOrDropsite, "Oak St")
		assert.Contains(t, stops[1].NameOrDropsite, "Pine Ave")
	})

	t.Run("unknown dropsite has no instructions", func(t *testing.T) {
		line := routeLine("Elm St", "7 Elm St", "pickup", "Doe", "Jane", packing.DispositionTote, 1)

		stops := BuildRouteStops([]order.OrderLine{line}, testStrategies())

		require.Len(t, stops, 1)
		assert.Empty(t, stops[0].Instructions)
	})
}
