// Package dates works with calendar days. A day is a time.Time at midnight
// UTC; the property's own time zone only matters when deciding what "today" is.
package dates

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

const day = 24 * time.Hour

// Normalize drops the clock part of t, keeping the calendar day as seen in t's
// own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Key(t time.Time) string {
	return Normalize(t).Format(Layout)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of nights from a to b. It is negative when b
// precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)) / day)
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location, now time.Time) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(now.In(loc))
}

// Range returns every day in [start, end).
func Range(start, end time.Time) []time.Time {
	n := DaysBetween(start, end)
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, AddDays(start, i))
	}
	return out
}

// Clock supplies "today" for the property.
type Clock interface {
	Today() time.Time
	Now() time.Time
}

type zoneClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Today() time.Time {
	return Today(c.loc, time.Now())
}

func (c *zoneClock) Now() time.Time {
	return time.Now()
}
