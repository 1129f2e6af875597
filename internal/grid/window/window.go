// Package window computes the visible slice of the booking grid.
package window

import (
	"time"

	"roomgrid/pkg/dates"
)

const (
	Week      = 7
	Fortnight = 14
	Month     = 30
)

// cell widths in grid units, wider for shorter ranges
var cellWidths = map[int][2]float64{
	Week:      {120, 88},
	Fortnight: {80, 60},
	Month:     {48, 40},
}

const (
	defaultWidth        = 48
	defaultCompactWidth = 40
)

// Window is the visible range together with its geometry.
type Window struct {
	Dates     []time.Time `json:"dates"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	CellWidth float64     `json:"cell_width"`
}

// Compute returns rangeLength consecutive days starting the day before pivot,
// so one day of context is visible before it.
func Compute(pivot time.Time, rangeLength int) []time.Time {
	if rangeLength <= 0 {
		return nil
	}
	first := dates.AddDays(pivot, -1)
	out := make([]time.Time, rangeLength)
	for i := range out {
		out[i] = dates.AddDays(first, i)
	}
	return out
}

func CellWidth(rangeLength int, compact bool) float64 {
	w, ok := cellWidths[rangeLength]
	if !ok {
		if compact {
			return defaultCompactWidth
		}
		return defaultWidth
	}
	if compact {
		return w[1]
	}
	return w[0]
}

// New bundles Compute and CellWidth. End is exclusive.
func New(pivot time.Time, rangeLength int, compact bool) Window {
	days := Compute(pivot, rangeLength)
	w := Window{
		Dates:     days,
		CellWidth: CellWidth(rangeLength, compact),
	}
	if len(days) > 0 {
		w.Start = days[0]
		w.End = dates.AddDays(days[len(days)-1], 1)
	}
	return w
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	d := dates.Normalize(day)
	return !d.Before(w.Start) && d.Before(w.End)
}

// Supported reports whether rangeLength is one of the grid's view ranges.
func Supported(rangeLength int) bool {
	_, ok := cellWidths[rangeLength]
	return ok
}
