package shared

import (
	"fmt"
	"slices"
	"time"

	"github.com/tidwall/gjson"
)

// parseBarDate parses a bar date in either the intraday or the daily layout.
func parseBarDate(value string, loc *time.Location) (time.Time, error) {
	dt, err := time.ParseInLocation(DateLayout, value, loc)
	if err == nil {
		return dt, nil
	}

	dt, err = time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing bar date %q: %w", value, err)
	}

	return dt, nil
}

// ParseBars parses bars from the provided json data. Dates are interpreted in loc
// and the resulting bars are sorted ascending by date.
func ParseBars(data []gjson.Result, loc *time.Location) ([]Bar, error) {
	if loc == nil {
		loc = time.UTC
	}

	bars := make([]Bar, 0, len(data))
	for idx := range data {
		var bar Bar

		bar.Open = data[idx].Get("open").Float()
		bar.Low = data[idx].Get("low").Float()
		bar.High = data[idx].Get("high").Float()
		bar.Close = data[idx].Get("close").Float()
		bar.Volume = data[idx].Get("volume").Float()

		dt, err := parseBarDate(data[idx].Get("date").String(), loc)
		if err != nil {
			return nil, err
		}

		bar.Date = dt
		bars = append(bars, bar)
	}

	// Providers commonly return the most recent bars first.
	slices.SortStableFunc(bars, func(a, b Bar) int {
		return a.Date.Compare(b.Date)
	})

	return bars, nil
}
