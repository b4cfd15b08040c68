package correlation

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// minTickers is the minimum number of tickers a correlation matrix is defined for.
	minTickers = 2
	// minObservations is the minimum number of returns a correlation is defined for.
	minObservations = 2
)

// Matrix represents the pairwise pearson correlation of ticker returns.
type Matrix struct {
	Tickers []string
	// Observations is the number of return rows the correlations were computed over.
	Observations int
	values       *mat.SymDense
}

// IsEmpty checks whether the matrix holds no correlations.
func (m *Matrix) IsEmpty() bool {
	return m.values == nil
}

// Len returns the number of tickers in the matrix.
func (m *Matrix) Len() int {
	if m.values == nil {
		return 0
	}

	return len(m.Tickers)
}

// At returns the correlation between the provided tickers.
func (m *Matrix) At(a string, b string) (float64, error) {
	i := slices.Index(m.Tickers, a)
	if i < 0 || m.values == nil {
		return 0, fmt.Errorf("no correlation entry for %s", a)
	}
	j := slices.Index(m.Tickers, b)
	if j < 0 {
		return 0, fmt.Errorf("no correlation entry for %s", b)
	}

	return m.values.At(i, j), nil
}

// Rows returns the matrix as a dense ticker by ticker grid following the
// order of Tickers.
func (m *Matrix) Rows() [][]float64 {
	n := m.Len()
	rows := make([][]float64, n)
	for i := range n {
		rows[i] = make([]float64, n)
		for j := range n {
			rows[i][j] = m.values.At(i, j)
		}
	}

	return rows
}

// Correlate returns the pearson correlation of the period over period returns
// of every ticker pair in the frame. The diagonal is one. Frames with fewer
// than two tickers or no rows yield an empty matrix; pairs with fewer than two
// returns or a flat ticker are NaN.
func Correlate(frame shared.CloseFrame) Matrix {
	if len(frame.Tickers) < minTickers || frame.IsEmpty() {
		return Matrix{}
	}

	returns := make([][]float64, len(frame.Tickers))
	for idx, ticker := range frame.Tickers {
		returns[idx] = shared.PercentChange(frame.Closes[ticker])
	}

	n := len(frame.Tickers)
	values := mat.NewSymDense(n, nil)
	observations := len(returns[0])
	for i := range n {
		values.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			corr := math.NaN()
			if observations >= minObservations {
				corr = stat.Correlation(returns[i], returns[j], nil)
			}

			values.SetSym(i, j, corr)
		}
	}

	return Matrix{
		Tickers:      slices.Clone(frame.Tickers),
		Observations: observations,
		values:       values,
	}
}

// Weekly resamples the frame to weekly closes and correlates their returns.
func Weekly(frame shared.CloseFrame, loc *time.Location) Matrix {
	return Correlate(WeeklyCloses(frame, loc))
}
