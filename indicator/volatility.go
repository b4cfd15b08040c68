package indicator

import (
	"time"

	"github.com/dnldd/quant/shared"
)

// VolatilityPoint represents the annualized realized volatility at a bar.
type VolatilityPoint struct {
	Date       time.Time
	Volatility float64
}

// RealizedVolatility returns the rolling annualized standard deviation of the
// series' percentage returns. The window is WindowSize of the bar count and the
// factor comes from the series interval. Leading bars without a full window of
// returns are dropped, so the result has len(returns)-(window-1) points; a
// series too short for a single window yields none.
func RealizedVolatility(series shared.Series) []VolatilityPoint {
	if series.Len() < 2 {
		return nil
	}

	window := WindowSize(series.Len())
	returns := shared.PercentChange(series.Closes())
	stds := rollingStdDev(returns, window)
	if len(stds) == 0 {
		return nil
	}

	factor := series.Interval.AnnualizationFactor()

	// The first full window ends at the return for bar index window.
	offset := window
	points := make([]VolatilityPoint, len(stds))
	for idx := range stds {
		points[idx] = VolatilityPoint{
			Date:       series.Bars[idx+offset].Date,
			Volatility: stds[idx] * factor,
		}
	}

	return points
}
