package shared

import (
	"fmt"
	"math"
	"time"
)

// Bar represents a unit OHLCV bar for a ticker.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Date   time.Time
}

// TypicalPrice returns the average of the bar's high, low and close.
func (b *Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Series represents the time-ordered bars of a ticker over a single
// (period, interval) window. Analytics never mutate a series.
type Series struct {
	Ticker   string
	Interval Interval
	Bars     []Bar
}

// NewSeries initializes a series for the provided ticker.
func NewSeries(ticker string, interval Interval, bars []Bar) Series {
	return Series{
		Ticker:   ticker,
		Interval: interval,
		Bars:     bars,
	}
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Bars)
}

// IsEmpty checks whether the series has no bars.
func (s *Series) IsEmpty() bool {
	return len(s.Bars) == 0
}

// First returns the first bar of the series.
func (s *Series) First() (Bar, bool) {
	if s.IsEmpty() {
		return Bar{}, false
	}

	return s.Bars[0], true
}

// Last returns the last bar of the series.
func (s *Series) Last() (Bar, bool) {
	if s.IsEmpty() {
		return Bar{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}

// Closes returns a copy of the close prices of the series.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for idx := range s.Bars {
		closes[idx] = s.Bars[idx].Close
	}

	return closes
}

// Dates returns a copy of the bar timestamps of the series.
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for idx := range s.Bars {
		dates[idx] = s.Bars[idx].Date
	}

	return dates
}

// Validate asserts the series is non-empty, strictly ascending and has no negative volume.
func (s *Series) Validate() error {
	if s.IsEmpty() {
		return fmt.Errorf("%s: %w", s.Ticker, ErrEmptySeries)
	}

	for idx := range s.Bars {
		if s.Bars[idx].Volume < 0 {
			return fmt.Errorf("%s bar %d: %w", s.Ticker, idx, ErrNegativeVolume)
		}
		if idx > 0 && !s.Bars[idx].Date.After(s.Bars[idx-1].Date) {
			return fmt.Errorf("%s bar %d (%s): %w", s.Ticker, idx,
				s.Bars[idx].Date.Format(DateLayout), ErrUnorderedSeries)
		}
	}

	return nil
}

// Between returns a copy of the series restricted to bars within [start, end].
func (s *Series) Between(start time.Time, end time.Time) Series {
	bars := make([]Bar, 0, len(s.Bars))
	for idx := range s.Bars {
		date := s.Bars[idx].Date
		if date.Before(start) || date.After(end) {
			continue
		}

		bars = append(bars, s.Bars[idx])
	}

	return NewSeries(s.Ticker, s.Interval, bars)
}

// PercentChange returns the simple percentage change between consecutive values
// as a fraction. The result has one fewer element than the input; a zero base
// yields ±Inf or NaN.
func PercentChange(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	changes := make([]float64, len(values)-1)
	for idx := 1; idx < len(values); idx++ {
		changes[idx-1] = values[idx]/values[idx-1] - 1
	}

	return changes
}

// HeadlineChange returns the percentage change from the first to the last close
// of the series, ignoring NaN closes. Empty series yield NaN.
func HeadlineChange(s *Series) float64 {
	first, last := math.NaN(), math.NaN()
	for idx := range s.Bars {
		price := s.Bars[idx].Close
		if math.IsNaN(price) {
			continue
		}
		if math.IsNaN(first) {
			first = price
		}
		last = price
	}

	return (last - first) / first * 100
}
