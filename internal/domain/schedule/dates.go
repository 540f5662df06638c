// Package schedule implements the fulfillment calendar: deliveries run on
// Tuesdays and Saturdays, Saturday windows open on Friday, and the monthly
// analytics look back one calendar month. Every function takes an explicit
// "now" so runs are reproducible.
package schedule

import "time"

// DateFormat is the wire format used by the backoffice export API.
const DateFormat = "2006-01-02"

// Window is a fulfillment date range. Date is the fulfillment day itself;
// Start may open a day earlier for Saturday deliveries.
type Window struct {
	Start time.Time
	End   time.Time
	Date  time.Time
}

// StartString returns the window start in API date format.
func (w Window) StartString() string { return w.Start.Format(DateFormat) }

// EndString returns the window end in API date format.
func (w Window) EndString() string { return w.End.Format(DateFormat) }

// DateString returns the fulfillment date in API date format.
func (w Window) DateString() string { return w.Date.Format(DateFormat) }

// NextFulfillment returns the window for the next Tuesday or Saturday
// delivery, whichever comes first. A Saturday window starts on Friday so
// Friday-dated orders ride along; a Tuesday window is the single day.
// A Tuesday or Saturday "now" counts as that delivery day.
func NextFulfillment(now time.Time) Window {
	day := truncateDay(now)

	untilTuesday := (int(time.Tuesday) - int(day.Weekday()) + 7) % 7
	untilSaturday := (int(time.Saturday) - int(day.Weekday()) + 7) % 7

	next := day.AddDate(0, 0, untilTuesday)
	if untilSaturday < untilTuesday {
		next = day.AddDate(0, 0, untilSaturday)
	}

	w := Window{Start: next, End: next, Date: next}
	if next.Weekday() == time.Saturday {
		w.Start = next.AddDate(0, 0, -1)
	}
	return w
}

// LastMonth returns the first and last day of the previous calendar month.
func LastMonth(now time.Time) (first, last time.Time) {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last = firstOfThis.AddDate(0, 0, -1)
	first = time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, now.Location())
	return first, last
}

// IsReportDay reports whether reports should run today: the day before each
// fulfillment window opens, orders have closed and manifests are needed.
// With Tuesday and Saturday deliveries that is Monday (for Tuesday) and
// Friday (for Saturday, whose window opens Friday but prints Thursday
// evening is too early for late orders).
func IsReportDay(now time.Time) bool {
	switch now.Weekday() {
	case time.Monday, time.Friday:
		return true
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
