package shared

import (
	"fmt"
	"math"
	"slices"
	"time"
)

const (
	// DateLayout is the format layout for parsing intraday bar dates.
	DateLayout = "2006-01-02 15:04:05"
	// DayLayout is the format layout for parsing daily bar dates.
	DayLayout = "2006-01-02"
	// NewYorkLocation is the exchange timezone used for calendar grouping.
	NewYorkLocation = "America/New_York"

	// tradingDays is the number of trading days in a year.
	tradingDays = 252
	// regularSessionBars is the number of 5-minute bars in a regular us equity session.
	regularSessionBars = 78
)

// Interval represents the sampling interval of a bar series.
type Interval int

const (
	FiveMinute Interval = iota
	FifteenMinute
	ThirtyMinute
	SixtyMinute
	NinetyMinute
	OneDay
	FiveDay
	OneWeek
	OneMonth
	ThreeMonth
	UnknownInterval
)

// intervals lists the supported intervals in ascending duration.
var intervals = []Interval{FiveMinute, FifteenMinute, ThirtyMinute, SixtyMinute, NinetyMinute,
	OneDay, FiveDay, OneWeek, OneMonth, ThreeMonth}

// String stringifies the provided interval.
func (i Interval) String() string {
	switch i {
	case FiveMinute:
		return "5m"
	case FifteenMinute:
		return "15m"
	case ThirtyMinute:
		return "30m"
	case SixtyMinute:
		return "60m"
	case NinetyMinute:
		return "90m"
	case OneDay:
		return "1d"
	case FiveDay:
		return "5d"
	case OneWeek:
		return "1wk"
	case OneMonth:
		return "1mo"
	case ThreeMonth:
		return "3mo"
	default:
		return "unknown"
	}
}

// DisplayName returns the dashboard label of the interval.
func (i Interval) DisplayName() string {
	switch i {
	case FiveMinute:
		return "5 Minutes"
	case FifteenMinute:
		return "15 Minutes"
	case ThirtyMinute:
		return "30 Minutes"
	case SixtyMinute:
		return "1 Hour"
	case NinetyMinute:
		return "1.5 Hours"
	case OneDay:
		return "1 Day"
	case FiveDay:
		return "5 Days"
	case OneWeek:
		return "1 Week"
	case OneMonth:
		return "1 Month"
	case ThreeMonth:
		return "3 Months"
	default:
		return "Unknown"
	}
}

// IsIntraday checks whether the interval samples within a trading day.
func (i Interval) IsIntraday() bool {
	return i >= FiveMinute && i <= NinetyMinute
}

// AnnualizationFactor returns the multiplier that scales a per-interval standard
// deviation to an annual one. Unknown intervals yield NaN.
func (i Interval) AnnualizationFactor() float64 {
	switch i {
	case FiveMinute:
		return math.Sqrt(tradingDays * regularSessionBars)
	case FifteenMinute:
		return math.Sqrt(tradingDays * regularSessionBars / 3)
	case ThirtyMinute:
		return math.Sqrt(tradingDays * regularSessionBars / 6)
	case SixtyMinute:
		return math.Sqrt(tradingDays * 6.5)
	case NinetyMinute:
		return math.Sqrt(tradingDays * regularSessionBars / 18.0)
	case OneDay:
		return math.Sqrt(tradingDays)
	case FiveDay:
		return math.Sqrt(tradingDays / 5.0)
	case OneWeek:
		return math.Sqrt(52)
	case OneMonth:
		return math.Sqrt(12)
	case ThreeMonth:
		return math.Sqrt(4)
	default:
		return math.NaN()
	}
}

// ParseInterval parses an interval from either its short form ("5m") or its
// display name ("5 Minutes").
func ParseInterval(s string) (Interval, error) {
	for _, i := range intervals {
		if s == i.String() || s == i.DisplayName() {
			return i, nil
		}
	}

	// Accept the common alias for hourly bars.
	if s == "1h" || s == "1H" {
		return SixtyMinute, nil
	}

	return UnknownInterval, fmt.Errorf("%w: %q", ErrUnknownInterval, s)
}

// Period represents the look-back window of a bar series.
type Period int

const (
	OneDayPeriod Period = iota
	FiveDayPeriod
	OneMonthPeriod
	ThreeMonthPeriod
	SixMonthPeriod
	YearToDatePeriod
	OneYearPeriod
	TwoYearPeriod
	FiveYearPeriod
	TenYearPeriod
	UnknownPeriod
)

var periods = []Period{OneDayPeriod, FiveDayPeriod, OneMonthPeriod, ThreeMonthPeriod,
	SixMonthPeriod, YearToDatePeriod, OneYearPeriod, TwoYearPeriod, FiveYearPeriod, TenYearPeriod}

// String stringifies the provided period.
func (p Period) String() string {
	switch p {
	case OneDayPeriod:
		return "1d"
	case FiveDayPeriod:
		return "5d"
	case OneMonthPeriod:
		return "1mo"
	case ThreeMonthPeriod:
		return "3mo"
	case SixMonthPeriod:
		return "6mo"
	case YearToDatePeriod:
		return "ytd"
	case OneYearPeriod:
		return "1y"
	case TwoYearPeriod:
		return "2y"
	case FiveYearPeriod:
		return "5y"
	case TenYearPeriod:
		return "10y"
	default:
		return "unknown"
	}
}

// DisplayName returns the dashboard label of the period.
func (p Period) DisplayName() string {
	switch p {
	case OneDayPeriod:
		return "1 Day"
	case FiveDayPeriod:
		return "5 Days"
	case OneMonthPeriod:
		return "1 Month"
	case ThreeMonthPeriod:
		return "3 Months"
	case SixMonthPeriod:
		return "6 Months"
	case YearToDatePeriod:
		return "Year To Date"
	case OneYearPeriod:
		return "1 Year"
	case TwoYearPeriod:
		return "2 Years"
	case FiveYearPeriod:
		return "5 Years"
	case TenYearPeriod:
		return "10 Years"
	default:
		return "Unknown"
	}
}

// ParsePeriod parses a period from either its short form ("1y") or its display
// name ("1 Year").
func ParsePeriod(s string) (Period, error) {
	for _, p := range periods {
		if s == p.String() || s == p.DisplayName() {
			return p, nil
		}
	}

	return UnknownPeriod, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Start returns the beginning of the period when looking back from the provided end.
func (p Period) Start(end time.Time) time.Time {
	switch p {
	case OneDayPeriod:
		return end.AddDate(0, 0, -1)
	case FiveDayPeriod:
		return end.AddDate(0, 0, -5)
	case OneMonthPeriod:
		return end.AddDate(0, -1, 0)
	case ThreeMonthPeriod:
		return end.AddDate(0, -3, 0)
	case SixMonthPeriod:
		return end.AddDate(0, -6, 0)
	case YearToDatePeriod:
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	case OneYearPeriod:
		return end.AddDate(-1, 0, 0)
	case TwoYearPeriod:
		return end.AddDate(-2, 0, 0)
	case FiveYearPeriod:
		return end.AddDate(-5, 0, 0)
	case TenYearPeriod:
		return end.AddDate(-10, 0, 0)
	default:
		return end
	}
}

// ValidIntervals returns the intervals that can be requested for the provided period.
func ValidIntervals(p Period) []Interval {
	long := []Interval{OneDay, FiveDay, OneWeek, OneMonth, ThreeMonth}

	switch p {
	case TenYearPeriod, FiveYearPeriod, TwoYearPeriod, OneYearPeriod, YearToDatePeriod:
		return long
	case SixMonthPeriod:
		return append([]Interval{ThirtyMinute, SixtyMinute, NinetyMinute}, long...)
	case ThreeMonthPeriod:
		return append([]Interval{FifteenMinute, ThirtyMinute, SixtyMinute, NinetyMinute}, long...)
	case OneMonthPeriod:
		return []Interval{FiveMinute, FifteenMinute, ThirtyMinute, SixtyMinute, NinetyMinute,
			OneDay, FiveDay, OneWeek}
	case FiveDayPeriod:
		return []Interval{FiveMinute, FifteenMinute, ThirtyMinute, SixtyMinute, NinetyMinute,
			OneDay, FiveDay}
	case OneDayPeriod:
		return []Interval{FiveMinute, FifteenMinute, ThirtyMinute, SixtyMinute, NinetyMinute, OneDay}
	default:
		return nil
	}
}

// ValidateWindow asserts the provided interval can be requested for the period.
func ValidateWindow(p Period, i Interval) error {
	if !slices.Contains(ValidIntervals(p), i) {
		return fmt.Errorf("%w: %s bars over %s", ErrInvalidIntervalForPeriod, i.String(), p.String())
	}

	return nil
}

// NewYorkTime returns the current time in new york (EST/EDT adjusted automatically).
func NewYorkTime() (time.Time, *time.Location, error) {
	loc, err := time.LoadLocation(NewYorkLocation)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("loading new york timezone: %w", err)
	}

	now := time.Now().In(loc)
	return now, loc, nil
}
