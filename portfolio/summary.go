package portfolio

import (
	"math"

	"github.com/dnldd/quant/indicator"
	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/stat"
)

// MissingSector is the sector reported for tickers without a classification.
const MissingSector = "N/A"

// Risk represents the latest rolling risk measures of a ticker.
type Risk struct {
	Volatility float64
	// Beta is NaN when no benchmark was supplied.
	Beta float64
}

// Summary represents the return and risk statistics of a single ticker.
//
// Sharpe is the mean per-interval return over its standard deviation, without
// a risk-free rate or annualization.
type Summary struct {
	Ticker         string
	ReturnPct      float64
	AvgReturnPct   float64
	StdDevPct      float64
	Sharpe         float64
	MaxDrawdownPct float64
	CurrentPrice   float64
	Risk           *Risk
}

// PortfolioRow represents a summary row of a held ticker.
type PortfolioRow struct {
	Summary
	CurrentVolume float64
	Sector        string
	Shares        float64
	Value         float64
	WeightPct     float64
}

// round2 rounds the provided value to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a copy of the summary with its figures rounded for display.
func (s Summary) Rounded() Summary {
	s.ReturnPct = round2(s.ReturnPct)
	s.AvgReturnPct = round2(s.AvgReturnPct)
	s.StdDevPct = round2(s.StdDevPct)
	s.Sharpe = round2(s.Sharpe)
	s.MaxDrawdownPct = round2(s.MaxDrawdownPct)
	s.CurrentPrice = round2(s.CurrentPrice)
	if s.Risk != nil {
		s.Risk = &Risk{Volatility: round2(s.Risk.Volatility), Beta: round2(s.Risk.Beta)}
	}

	return s
}

// Rounded returns a copy of the row with its figures rounded for display.
func (r PortfolioRow) Rounded() PortfolioRow {
	r.Summary = r.Summary.Rounded()
	r.Value = round2(r.Value)
	r.WeightPct = round2(r.WeightPct)

	return r
}

// maxDrawdown returns the most negative percentage decline of the compounded
// returns from their running peak. The index starts at one so a decline from
// the first bar counts.
func maxDrawdown(returns []float64) float64 {
	cum, peak, worst := 1.0, 1.0, 0.0
	for _, r := range returns {
		cum *= 1 + r
		peak = math.Max(peak, cum)
		worst = math.Min(worst, (cum-peak)/peak*100)
	}

	return worst
}

// Summarize computes the summary of the provided series. NaN closes are
// ignored. It returns false for a series without closes.
func Summarize(series shared.Series) (Summary, bool) {
	closes := make([]float64, 0, series.Len())
	for _, price := range series.Closes() {
		if !math.IsNaN(price) {
			closes = append(closes, price)
		}
	}

	if len(closes) == 0 {
		return Summary{}, false
	}

	initial, current := closes[0], closes[len(closes)-1]
	returns := shared.PercentChange(closes)
	avg, std := math.NaN(), math.NaN()
	if len(returns) > 0 {
		avg, std = stat.MeanStdDev(returns, nil)
	}

	summary := Summary{
		Ticker:         series.Ticker,
		ReturnPct:      (current/initial - 1) * 100,
		AvgReturnPct:   avg * 100,
		StdDevPct:      std * 100,
		MaxDrawdownPct: maxDrawdown(returns),
		CurrentPrice:   current,
	}
	summary.Sharpe = summary.AvgReturnPct / summary.StdDevPct

	return summary, true
}

// RiskOf returns the latest realized volatility of the series and its latest
// rolling beta against the benchmark. A nil benchmark or one sharing too few
// timestamps leaves the beta NaN. It returns nil when the series is too short
// for a volatility window.
func RiskOf(series shared.Series, benchmark *shared.Series) *Risk {
	vol := indicator.RealizedVolatility(series)
	if len(vol) == 0 {
		return nil
	}

	risk := &Risk{Volatility: vol[len(vol)-1].Volatility, Beta: math.NaN()}
	if benchmark != nil {
		beta := indicator.RollingBeta(series, *benchmark)
		if len(beta) > 0 {
			risk.Beta = beta[len(beta)-1].Beta
		}
	}

	return risk
}

// SummaryRows returns a summary for each non-empty series in input order.
func SummaryRows(series []shared.Series) []Summary {
	rows := make([]Summary, 0, len(series))
	for idx := range series {
		summary, ok := Summarize(series[idx])
		if !ok {
			continue
		}

		rows = append(rows, summary)
	}

	return rows
}

// HoldingRow returns the portfolio row of a single held series, carrying its
// summary, latest volume, sector and position value. It reports false when the
// series has no closes. A missing sector is reported as MissingSector.
func HoldingRow(series shared.Series, shares float64, sector string) (PortfolioRow, bool) {
	summary, ok := Summarize(series)
	if !ok {
		return PortfolioRow{}, false
	}

	last, _ := series.Last()
	if sector == "" {
		sector = MissingSector
	}

	return PortfolioRow{
		Summary:       summary,
		CurrentVolume: last.Volume,
		Sector:        sector,
		Shares:        shares,
		Value:         summary.CurrentPrice * shares,
	}, true
}

// WeighRows sets the share of the total value of every row.
func WeighRows(rows []PortfolioRow) {
	var total float64
	for idx := range rows {
		total += rows[idx].Value
	}

	for idx := range rows {
		rows[idx].WeightPct = rows[idx].Value / total * 100
	}
}

// PortfolioRows returns a summary row for each held series in input order,
// adding the latest volume, sector, position value and the position's share of
// the total value. Series without a holding or without closes are skipped and
// empty holdings yield no rows. Missing sectors are reported as MissingSector.
func PortfolioRows(series []shared.Series, holdings Holdings, sectors map[string]string) []PortfolioRow {
	if len(holdings) == 0 {
		return nil
	}

	rows := make([]PortfolioRow, 0, len(series))
	for idx := range series {
		shares, ok := holdings[series[idx].Ticker]
		if !ok {
			continue
		}

		row, ok := HoldingRow(series[idx], shares, sectors[series[idx].Ticker])
		if !ok {
			continue
		}

		rows = append(rows, row)
	}

	WeighRows(rows)

	return rows
}
