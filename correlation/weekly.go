package correlation

import (
	"time"

	"github.com/dnldd/quant/shared"
)

// WeeklyCloses resamples the frame to one row per calendar week by keeping each
// row whose week differs from the following row's week. The final row is
// always kept. Weeks run monday through sunday in loc; a nil loc uses the
// exchange timezone.
func WeeklyCloses(frame shared.CloseFrame, loc *time.Location) shared.CloseFrame {
	if loc == nil {
		loc = shared.ExchangeLocation()
	}

	weekly := shared.CloseFrame{
		Tickers: frame.Tickers,
		Closes:  make(map[string][]float64, len(frame.Tickers)),
	}

	rows := frame.Len()
	for idx := range rows {
		if idx < rows-1 &&
			shared.NewWeekKey(frame.Dates[idx], loc) == shared.NewWeekKey(frame.Dates[idx+1], loc) {
			continue
		}

		weekly.Dates = append(weekly.Dates, frame.Dates[idx])
		for _, ticker := range frame.Tickers {
			weekly.Closes[ticker] = append(weekly.Closes[ticker], frame.Closes[ticker][idx])
		}
	}

	return weekly
}
