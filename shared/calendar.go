package shared

import (
	"time"
)

// DayKey is the calendar date a bar belongs to in a given timezone.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDayKey returns the calendar date of the provided time in loc. A nil loc
// uses the time's own location.
func NewDayKey(t time.Time, loc *time.Location) DayKey {
	if loc != nil {
		t = t.In(loc)
	}

	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// String stringifies the day key.
func (d DayKey) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DayLayout)
}

// WeekKey is the ISO week (monday through sunday) a bar belongs to.
type WeekKey struct {
	Year int
	Week int
}

// NewWeekKey returns the ISO week of the provided time in loc. A nil loc uses
// the time's own location.
func NewWeekKey(t time.Time, loc *time.Location) WeekKey {
	if loc != nil {
		t = t.In(loc)
	}

	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// ExchangeLocation returns the new york location, falling back to UTC when the
// timezone database is unavailable.
func ExchangeLocation() *time.Location {
	loc, err := time.LoadLocation(NewYorkLocation)
	if err != nil {
		return time.UTC
	}

	return loc
}
