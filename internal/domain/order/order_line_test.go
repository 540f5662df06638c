package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() map[string]string {
	return map[string]string{
		ColOrder:           "10042",
		ColEmail:           "jane@example.com",
		ColLastName:        "Doe",
		ColFirstName:       "Jane",
		ColPhone:           "541-555-0134",
		ColFulfillmentName: "Oak St",
		ColProductID:       "999",
		ColProduct:         "Whole Milk",
		ColPackageName:     "Half Gallon",
		ColItemUnit:        "each",
		ColVendor:          "Creamy Cow",
		ColCategory:        "Dairy",
		ColQuantity:        "2.0",
		ColNumItems:        "1",
		ColPackingTag:      "dairy",
	}
}

func TestFromRow(t *testing.T) {
	t.Run("maps and trims fields", func(t *testing.T) {
		row := sampleRow()
		row[ColLastName] = "  Doe  "

		line, ok := FromRow(row)

		require.True(t, ok)
		assert.Equal(t, "Doe", line.LastName)
		assert.Equal(t, "Oak St", line.DropsiteName)
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, "Whole Milk - Half Gallon", line.ProductLabel())
	})

	t.Run("missing column reads as empty, not an error", func(t *testing.T) {
		row := sampleRow()
		delete(row, ColPackingTag)

		line, ok := FromRow(row)

		require.True(t, ok)
		assert.Equal(t, "", line.PackingTag)
	})

	t.Run("blank dropsite skips the row", func(t *testing.T) {
		row := sampleRow()
		row[ColFulfillmentName] = ""

		_, ok := FromRow(row)

		assert.False(t, ok)
	})

	t.Run("missing customer identity skips the row", func(t *testing.T) {
		row := sampleRow()
		row[ColLastName] = ""
		row[ColFirstName] = ""
		row[ColEmail] = ""

		_, ok := FromRow(row)

		assert.False(t, ok)
	})

	t.Run("product ID trailing decimal is stripped", func(t *testing.T) {
		row := sampleRow()
		row[ColProductID] = "1023667.0"

		line, ok := FromRow(row)

		require.True(t, ok)
		assert.Equal(t, "1023667", line.ProductID)
	})
}

func TestQuantityNormalization(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		numItems string
		want     int
	}{
		{"bundle fixup applies", "1", "6", 6},
		{"plain quantity unchanged", "3", "1", 3},
		{"fractional quantity rounds", "2.6", "", 3},
		{"num items one leaves quantity", "1", "1", 1},
		{"blank quantity reads zero", "", "", 0},
		{"unparsable quantity reads zero", "n/a", "", 0},
		{"fixup needs quantity exactly one", "2", "6", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := sampleRow()
			row[ColQuantity] = tt.quantity
			row[ColNumItems] = tt.numItems

			line, ok := FromRow(row)

			require.True(t, ok)
			assert.Equal(t, tt.want, line.Quantity)
		})
	}
}

func TestCustomerKey(t *testing.T) {
	line, ok := FromRow(sampleRow())
	require.True(t, ok)

	assert.Equal(t, "Doe, Jane\n(541) 555-0134", line.CustomerKey())

	t.Run("membership category detected", func(t *testing.T) {
		row := sampleRow()
		row[ColCategory] = "Membership"
		line, ok := FromRow(row)
		require.True(t, ok)
		assert.True(t, line.IsMembership())
	})
}
