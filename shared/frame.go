package shared

import (
	"math"
	"slices"
	"time"
)

// CloseFrame represents close prices of several tickers aligned on a shared
// timestamp index.
type CloseFrame struct {
	Tickers []string
	Dates   []time.Time
	Closes  map[string][]float64
}

// Len returns the number of aligned rows in the frame.
func (f *CloseFrame) Len() int {
	return len(f.Dates)
}

// IsEmpty checks whether the frame has no tickers or no rows.
func (f *CloseFrame) IsEmpty() bool {
	return len(f.Tickers) == 0 || len(f.Dates) == 0
}

// Row returns the closes of every ticker at the provided row index.
func (f *CloseFrame) Row(idx int) []float64 {
	row := make([]float64, len(f.Tickers))
	for i, ticker := range f.Tickers {
		row[i] = f.Closes[ticker][idx]
	}

	return row
}

// AlignCloses inner-joins the close prices of the provided series on their
// timestamps. Empty series are skipped and rows holding a NaN close for any
// ticker are dropped. Ticker order follows the input order.
func AlignCloses(series ...Series) CloseFrame {
	frame := CloseFrame{
		Closes: make(map[string][]float64),
	}

	lookups := make([]map[int64]float64, 0, len(series))
	var base []time.Time
	for idx := range series {
		s := &series[idx]
		if s.IsEmpty() || slices.Contains(frame.Tickers, s.Ticker) {
			continue
		}

		lookup := make(map[int64]float64, s.Len())
		for i := range s.Bars {
			lookup[s.Bars[i].Date.UnixNano()] = s.Bars[i].Close
		}

		if base == nil {
			base = s.Dates()
		}

		frame.Tickers = append(frame.Tickers, s.Ticker)
		lookups = append(lookups, lookup)
	}

	if len(frame.Tickers) == 0 {
		return frame
	}

	for _, ticker := range frame.Tickers {
		frame.Closes[ticker] = make([]float64, 0, len(base))
	}

	for _, date := range base {
		key := date.UnixNano()
		row := make([]float64, 0, len(lookups))
		for _, lookup := range lookups {
			price, ok := lookup[key]
			if !ok || math.IsNaN(price) {
				break
			}
			row = append(row, price)
		}

		if len(row) != len(lookups) {
			continue
		}

		frame.Dates = append(frame.Dates, date)
		for i, ticker := range frame.Tickers {
			frame.Closes[ticker] = append(frame.Closes[ticker], row[i])
		}
	}

	return frame
}
