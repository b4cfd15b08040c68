package indicator

import (
	"time"

	"github.com/dnldd/quant/shared"
)

// BetaPoint represents the rolling beta of a ticker against a benchmark at a bar.
type BetaPoint struct {
	Date time.Time
	Beta float64
}

// RollingBeta returns the rolling covariance of the target's returns with the
// benchmark's returns over the rolling variance of the benchmark's returns.
// Both series are inner-joined on timestamp first and the window is WindowSize
// of the joined length. Leading bars without a full window are dropped. Series
// sharing no timestamps yield no points; a flat benchmark window yields NaN or
// infinite betas.
func RollingBeta(target shared.Series, benchmark shared.Series) []BetaPoint {
	bars, targetCloses, benchmarkCloses := joinCloses(target, benchmark)
	if len(bars) < 2 {
		return nil
	}

	window := WindowSize(len(bars))
	betas := rollingBeta(shared.PercentChange(targetCloses),
		shared.PercentChange(benchmarkCloses), window)
	if len(betas) == 0 {
		return nil
	}

	points := make([]BetaPoint, len(betas))
	for idx := range betas {
		points[idx] = BetaPoint{
			Date: bars[idx+window].Date,
			Beta: betas[idx],
		}
	}

	return points
}
