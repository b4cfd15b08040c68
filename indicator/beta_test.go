package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/peterldowns/testy/assert"
)

// scaledCloses builds closes whose returns are the benchmark's returns scaled by beta.
func scaledCloses(benchmark []float64, beta float64) []float64 {
	returns := shared.PercentChange(benchmark)
	closes := make([]float64, len(benchmark))
	closes[0] = 50
	for idx, r := range returns {
		closes[idx+1] = closes[idx] * (1 + beta*r)
	}

	return closes
}

func TestRollingBeta(t *testing.T) {
	start := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	benchCloses := zigzag(30, 0.01, -0.015)
	benchmark := dailySeries("^GSPC", start, benchCloses)
	target := dailySeries("AAPL", start, scaledCloses(benchCloses, 2))

	// Ensure the beta of a levered series is its leverage.
	points := RollingBeta(target, benchmark)
	window := WindowSize(30)
	assert.Equal(t, len(points), (30-1)-(window-1))
	assert.Equal(t, points[0].Date, target.Bars[window].Date)
	for _, point := range points {
		assert.True(t, math.Abs(point.Beta-2) < 1e-9)
	}

	// Ensure a series against itself has unit beta.
	self := RollingBeta(benchmark, benchmark)
	assert.Equal(t, len(self), len(points))
	assert.True(t, math.Abs(self[0].Beta-1) < 1e-12)
}

func TestRollingBetaAlignment(t *testing.T) {
	start := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	benchCloses := zigzag(30, 0.01, -0.015)
	benchmark := dailySeries("^GSPC", start, benchCloses)

	// Ensure only shared timestamps are used.
	target := dailySeries("AAPL", start.AddDate(0, 0, -5), append([]float64{1, 2, 3, 4, 5},
		scaledCloses(benchCloses, 1.5)...))
	points := RollingBeta(target, benchmark)
	assert.Equal(t, len(points), 29-(WindowSize(30)-1))
	assert.True(t, math.Abs(points[len(points)-1].Beta-1.5) < 1e-9)

	// Ensure series with no common timestamps yield nothing.
	later := dailySeries("AAPL", start.AddDate(1, 0, 0), benchCloses)
	assert.Equal(t, len(RollingBeta(later, benchmark)), 0)

	// Ensure empty series yield nothing.
	assert.Equal(t, len(RollingBeta(shared.NewSeries("AAPL", shared.OneDay, nil), benchmark)), 0)
}

func TestRollingBetaFlatBenchmark(t *testing.T) {
	start := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	flat := make([]float64, 20)
	for idx := range flat {
		flat[idx] = 100
	}

	benchmark := dailySeries("^GSPC", start, flat)
	target := dailySeries("AAPL", start, zigzag(20, 0.01, -0.02))

	// Ensure a benchmark without variance yields undefined betas instead of zero.
	points := RollingBeta(target, benchmark)
	assert.GreaterThan(t, len(points), 0)
	for _, point := range points {
		assert.True(t, math.IsNaN(point.Beta) || math.IsInf(point.Beta, 0))
	}
}
