// Package fiscal converts calendar dates to the company's fiscal years.
// The fiscal year runs from August 1 through July 31 of the following year.
package fiscal

import (
	"fmt"
	"time"
)

// startMonth is the first month of the fiscal year.
const startMonth = time.August

// Window is the [Start, End] date range of one fiscal year. Both bounds are
// inclusive for membership tests.
type Window struct {
	Year  int
	Start time.Time
	End   time.Time
}

// YearOf returns the fiscal year the given date belongs to: the calendar year
// itself from August onward, the previous one before.
func YearOf(d time.Time) int {
	if d.Month() >= startMonth {
		return d.Year()
	}
	return d.Year() - 1
}

// WindowOf returns the date range of the given fiscal year in loc.
func WindowOf(year int, loc *time.Location) Window {
	return Window{
		Year:  year,
		Start: time.Date(year, startMonth, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year+1, time.July, 31, 23, 59, 59, 0, loc),
	}
}

// Contains reports whether d falls inside the window, bounds included.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Label renders the window as a display label, e.g. "FY2025".
func (w Window) Label() string {
	return fmt.Sprintf("FY%d", w.Year)
}
