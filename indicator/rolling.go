package indicator

import (
	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/stat"
)

const (
	// minRollingWindow is the smallest rolling window used for realized volatility and beta.
	minRollingWindow = 10
)

// WindowSize returns the rolling window for a series of n observations: a tenth
// of the series, truncated, but no fewer than ten.
func WindowSize(n int) int {
	return max(minRollingWindow, n/10)
}

// rollingStdDev returns the sample standard deviation of every full window of values.
func rollingStdDev(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}

	out := make([]float64, 0, len(values)-window+1)
	for end := window; end <= len(values); end++ {
		out = append(out, stat.StdDev(values[end-window:end], nil))
	}

	return out
}

// rollingBeta returns the sample covariance of x and y over the sample variance
// of y for every full window.
func rollingBeta(x []float64, y []float64, window int) []float64 {
	if window <= 0 || len(x) < window || len(x) != len(y) {
		return nil
	}

	out := make([]float64, 0, len(x)-window+1)
	for end := window; end <= len(x); end++ {
		xs := x[end-window : end]
		ys := y[end-window : end]
		out = append(out, stat.Covariance(xs, ys, nil)/stat.Variance(ys, nil))
	}

	return out
}

// joinCloses inner-joins the closes of two series on timestamp, following the
// order of the first series.
func joinCloses(a shared.Series, b shared.Series) ([]shared.Bar, []float64, []float64) {
	lookup := make(map[int64]float64, b.Len())
	for idx := range b.Bars {
		lookup[b.Bars[idx].Date.UnixNano()] = b.Bars[idx].Close
	}

	bars := make([]shared.Bar, 0, a.Len())
	left := make([]float64, 0, a.Len())
	right := make([]float64, 0, a.Len())
	for idx := range a.Bars {
		price, ok := lookup[a.Bars[idx].Date.UnixNano()]
		if !ok {
			continue
		}

		bars = append(bars, a.Bars[idx])
		left = append(left, a.Bars[idx].Close)
		right = append(right, price)
	}

	return bars, left, right
}
