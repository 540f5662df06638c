package localline

import "strings"

// tokenResponse is the body of a successful POST /token call.
type tokenResponse struct {
	Access string `json:"access"`
}

// exportResponse is the body returned when an export is requested.
type exportResponse struct {
	ID int64 `json:"id"`
}

// exportStatusResponse is the body of GET /export/{id}/.
type exportStatusResponse struct {
	Status   string `json:"status"`
	FilePath string `json:"file_path"`
}

// Export status values reported by the platform.
const (
	ExportStatusComplete = "COMPLETE"
	ExportStatusFailed   = "FAILED"
)

// OrdersExportParams describes an orders list export request.
type OrdersExportParams struct {
	// Start and End are fulfillment dates in YYYY-MM-DD form.
	Start string
	End   string
	// PaidOnly restricts the export to paid orders.
	PaidOnly bool
	// PriceLists filters by price list IDs.
	PriceLists []string
	// CustomerTags filters by customer tag IDs.
	CustomerTags []string
}

// fulfillmentStrategiesResponse is the body of GET /fulfillment-strategies/.
type fulfillmentStrategiesResponse struct {
	Results []FulfillmentStrategy `json:"results"`
}

// FulfillmentStrategy is one dropsite or delivery strategy as configured on
// the platform.
type FulfillmentStrategy struct {
	Name         string               `json:"name"`
	Active       bool                 `json:"active"`
	Address      *StrategyAddress     `json:"address"`
	Availability StrategyAvailability `json:"availability"`
}

// StrategyAddress is the geocoded location of a fulfillment strategy.
type StrategyAddress struct {
	FormattedAddress string   `json:"formatted_address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

// StrategyAvailability carries the weekly schedule and the pickup
// instructions shown to members.
type StrategyAvailability struct {
	Instructions      string     `json:"instructions"`
	TimeSlots         []TimeSlot `json:"time_slots"`
	RepeatOnMonday    bool       `json:"repeat_on_monday"`
	RepeatOnTuesday   bool       `json:"repeat_on_tuesday"`
	RepeatOnWednesday bool       `json:"repeat_on_wednesday"`
	RepeatOnThursday  bool       `json:"repeat_on_thursday"`
	RepeatOnFriday    bool       `json:"repeat_on_friday"`
	RepeatOnSaturday  bool       `json:"repeat_on_saturday"`
	RepeatOnSunday    bool       `json:"repeat_on_sunday"`
}

// TimeSlot is a pickup window on a strategy's delivery day.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Days lists the weekday names the strategy repeats on, Monday first.
func (a StrategyAvailability) Days() []string {
	var days []string
	if a.RepeatOnMonday {
		days = append(days, "Monday")
	}
	if a.RepeatOnTuesday {
		days = append(days, "Tuesday")
	}
	if a.RepeatOnWednesday {
		days = append(days, "Wednesday")
	}
	if a.RepeatOnThursday {
		days = append(days, "Thursday")
	}
	if a.RepeatOnFriday {
		days = append(days, "Friday")
	}
	if a.RepeatOnSaturday {
		days = append(days, "Saturday")
	}
	if a.RepeatOnSunday {
		days = append(days, "Sunday")
	}
	return days
}

// TimeWindow renders the time slots as "HH:MM - HH:MM", comma separated.
func (a StrategyAvailability) TimeWindow() string {
	if len(a.TimeSlots) == 0 {
		return ""
	}
	windows := make([]string, len(a.TimeSlots))
	for i, slot := range a.TimeSlots {
		windows[i] = slot.Start + " - " + slot.End
	}
	return strings.Join(windows, ", ")
}

// StrategyIndex looks fulfillment strategies up by name.
type StrategyIndex map[string]FulfillmentStrategy

// NewStrategyIndex builds a name index over the strategies.
func NewStrategyIndex(strategies []FulfillmentStrategy) StrategyIndex {
	index := make(StrategyIndex, len(strategies))
	for _, s := range strategies {
		index[s.Name] = s
	}
	return index
}

// InstructionsFor returns the pickup instructions for the named strategy,
// or "" when the strategy is unknown or has none.
func (idx StrategyIndex) InstructionsFor(name string) string {
	return idx[name].Availability.Instructions
}

// joinIDs renders an ID list the way the API expects: comma separated.
func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
