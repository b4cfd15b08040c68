package portfolio

import (
	"time"

	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/floats"
)

// CumulativePoint represents the portfolio value and its cumulative return at a timestamp.
type CumulativePoint struct {
	Date      time.Time
	Value     float64
	ReturnPct float64
}

// CumulativeReturns values the holdings over the aligned closes of the frame and
// returns the percentage change of that value from the first row. Tickers of
// the frame without a holding contribute nothing. An empty frame or empty
// holdings yield no points; a zero initial value yields undefined returns.
func CumulativeReturns(frame shared.CloseFrame, holdings Holdings) []CumulativePoint {
	if frame.IsEmpty() || len(holdings) == 0 {
		return nil
	}

	shares := make([]float64, len(frame.Tickers))
	for idx, ticker := range frame.Tickers {
		shares[idx] = holdings[ticker]
	}

	points := make([]CumulativePoint, frame.Len())
	for idx := range points {
		points[idx] = CumulativePoint{
			Date:  frame.Dates[idx],
			Value: floats.Dot(frame.Row(idx), shares),
		}
	}

	initial := points[0].Value
	for idx := range points {
		points[idx].ReturnPct = (points[idx].Value/initial - 1) * 100
	}

	return points
}
