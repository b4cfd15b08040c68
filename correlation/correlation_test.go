package correlation

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

// weekdays returns n consecutive weekday dates starting at the provided date.
func weekdays(start time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for date := start; len(dates) < n; date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, date)
	}

	return dates
}

// frameOf builds a close frame from the provided dates and ticker closes.
func frameOf(dates []time.Time, tickers []string, closes ...[]float64) shared.CloseFrame {
	frame := shared.CloseFrame{
		Tickers: tickers,
		Dates:   dates,
		Closes:  make(map[string][]float64),
	}
	for idx, ticker := range tickers {
		frame.Closes[ticker] = closes[idx]
	}

	return frame
}

func TestWeeklyCloses(t *testing.T) {
	// Monday 6th through Wednesday 22nd of january 2025.
	dates := weekdays(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 13)
	closes := make([]float64, len(dates))
	for idx := range closes {
		closes[idx] = float64(100 + idx)
	}

	// Ensure the last row of each week and the final row are kept.
	weekly := WeeklyCloses(frameOf(dates, []string{"AAPL"}, closes), time.UTC)
	want := []time.Time{
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 22, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, weekly.Dates); diff != "" {
		t.Errorf("unexpected weekly dates (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{104, 109, 112}, weekly.Closes["AAPL"]); diff != "" {
		t.Errorf("unexpected weekly closes (-want +got):\n%s", diff)
	}

	// Ensure an empty frame stays empty.
	empty := WeeklyCloses(shared.CloseFrame{}, nil)
	assert.True(t, empty.IsEmpty())
}

func TestWeeklyClosesTimezone(t *testing.T) {
	loc, err := time.LoadLocation(shared.NewYorkLocation)
	if err != nil {
		t.Skip("timezone database unavailable")
	}

	// Sunday evening in new york is monday in UTC.
	dates := []time.Time{
		time.Date(2025, time.January, 10, 16, 0, 0, 0, loc),
		time.Date(2025, time.January, 12, 20, 0, 0, 0, loc),
		time.Date(2025, time.January, 13, 16, 0, 0, 0, loc),
	}
	frame := frameOf(dates, []string{"AAPL"}, []float64{1, 2, 3})

	// Ensure the week boundary follows the exchange calendar.
	weekly := WeeklyCloses(frame, nil)
	assert.Equal(t, weekly.Len(), 2)
	assert.Equal(t, weekly.Dates[0], dates[1])

	utc := WeeklyCloses(frame, time.UTC)
	assert.Equal(t, utc.Len(), 2)
	assert.Equal(t, utc.Dates[0], dates[0])
}

func TestCorrelate(t *testing.T) {
	dates := weekdays(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 6)
	base := []float64{100, 102, 101, 105, 103, 108}
	inverse := make([]float64, len(base))
	for idx := range base {
		inverse[idx] = 200 - base[idx]
	}

	frame := frameOf(dates, []string{"AAPL", "MSFT", "XOM"}, base, base, inverse)
	m := Correlate(frame)
	assert.False(t, m.IsEmpty())
	assert.Equal(t, m.Len(), 3)
	assert.Equal(t, m.Observations, 5)

	// Ensure identical series correlate perfectly.
	same, err := m.At("AAPL", "MSFT")
	assert.NoError(t, err)
	assert.True(t, math.Abs(same-1) < 1e-12)

	// Ensure the diagonal is one and the matrix is symmetric.
	rows := m.Rows()
	for i := range rows {
		assert.Equal(t, rows[i][i], 1.0)
		for j := range rows {
			assert.Equal(t, rows[i][j], rows[j][i])
		}
	}

	// Ensure opposing moves correlate negatively.
	opposite, err := m.At("XOM", "AAPL")
	assert.NoError(t, err)
	assert.True(t, opposite < -0.9)

	// Ensure unknown tickers error.
	_, err = m.At("AAPL", "TSLA")
	assert.Error(t, err)
}

func TestCorrelateDegenerate(t *testing.T) {
	dates := weekdays(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 4)

	// Ensure fewer than two tickers yield an empty matrix.
	single := Correlate(frameOf(dates, []string{"AAPL"}, []float64{1, 2, 3, 4}))
	assert.True(t, single.IsEmpty())
	assert.Equal(t, single.Len(), 0)
	assert.Equal(t, len(single.Rows()), 0)
	_, err := single.At("AAPL", "AAPL")
	assert.Error(t, err)

	// Ensure an empty frame yields an empty matrix.
	none := Correlate(frameOf(nil, []string{"AAPL", "MSFT"}, nil, nil))
	assert.True(t, none.IsEmpty())

	// Ensure a flat ticker yields an undefined correlation.
	flat := Correlate(frameOf(dates, []string{"AAPL", "MSFT"},
		[]float64{1, 2, 3, 5}, []float64{4, 4, 4, 4}))
	corr, err := flat.At("AAPL", "MSFT")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(corr))

	// Ensure too few returns yield an undefined correlation.
	short := Correlate(frameOf(dates[:2], []string{"AAPL", "MSFT"},
		[]float64{1, 2}, []float64{3, 4}))
	corr, err = short.At("AAPL", "MSFT")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(corr))
}

func TestWeekly(t *testing.T) {
	dates := weekdays(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 20)
	a := make([]float64, len(dates))
	b := make([]float64, len(dates))
	for idx := range dates {
		a[idx] = 100 + float64(idx*idx%7)
		b[idx] = 2 * a[idx]
	}

	// Ensure scaled series correlate perfectly on weekly returns.
	m := Weekly(frameOf(dates, []string{"AAPL", "MSFT"}, a, b), time.UTC)
	assert.Equal(t, m.Observations, 3)
	corr, err := m.At("AAPL", "MSFT")
	assert.NoError(t, err)
	assert.True(t, math.Abs(corr-1) < 1e-12)
}
