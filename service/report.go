package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dnldd/quant/correlation"
	"github.com/dnldd/quant/indicator"
	"github.com/dnldd/quant/portfolio"
	"github.com/dnldd/quant/profile"
	"github.com/dnldd/quant/shared"
	"github.com/google/uuid"
)

// ErrNoTickers is returned when a report is requested without tickers.
var ErrNoTickers = errors.New("no tickers provided")

// Header identifies a generated report.
type Header struct {
	ID       uuid.UUID
	Created  time.Time
	Period   shared.Period
	Interval shared.Interval
}

// newHeader stamps a new report header.
func newHeader(period shared.Period, interval shared.Interval) Header {
	return Header{
		ID:       uuid.New(),
		Created:  time.Now(),
		Period:   period,
		Interval: interval,
	}
}

// TickerReport represents the technical analytics of a single ticker.
type TickerReport struct {
	Header
	Ticker         string
	Series         shared.Series
	HeadlineChange float64
	VWAP           []indicator.VWAPRow
	Snapbacks      []indicator.SnapbackEvent
	Profile        profile.Profile
	// ProfileInfo is nil when the profile is empty.
	ProfileInfo *profile.Info
	Volatility  []indicator.VolatilityPoint
	Beta        []indicator.BetaPoint
	// Summary is nil when the ticker has no data.
	Summary *portfolio.Summary
}

// MarketReport represents the comparative analytics of a set of tickers.
type MarketReport struct {
	Header
	Tickers     []string
	Summaries   []portfolio.Summary
	Correlation correlation.Matrix
	Sectors     []portfolio.SectorCount
	News        []shared.Article
}

// PortfolioReport represents the analytics of a set of holdings.
type PortfolioReport struct {
	Header
	Holdings    portfolio.Holdings
	Rows        []portfolio.PortfolioRow
	Cumulative  []portfolio.CumulativePoint
	Correlation correlation.Matrix
	Sectors     []portfolio.SectorCount
	TotalValue  float64
}

// uniqueTickers normalizes the provided tickers, dropping blanks and duplicates.
func uniqueTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" || slices.Contains(out, ticker) {
			continue
		}

		out = append(out, ticker)
	}

	return out
}

// TickerReport computes the technical analytics of the ticker over the window.
// Intraday windows include the VWAP rows and snapback events. A ticker without
// data yields a report with empty analytics.
func (d *Dashboard) TickerReport(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) (*TickerReport, error) {
	err := shared.ValidateWindow(period, interval)
	if err != nil {
		return nil, err
	}

	tickers := uniqueTickers([]string{ticker, d.cfg.Benchmark})
	if len(tickers) == 0 || tickers[0] != strings.ToUpper(strings.TrimSpace(ticker)) {
		return nil, ErrNoTickers
	}

	series, err := d.fetchAll(ctx, tickers, period, interval)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ticker, err)
	}

	target := series[tickers[0]]
	benchmark := series[d.cfg.Benchmark]

	report := &TickerReport{
		Header:         newHeader(period, interval),
		Ticker:         target.Ticker,
		Series:         target,
		HeadlineChange: shared.HeadlineChange(&target),
		Profile:        profile.Build(target, d.cfg.NumBins),
		Volatility:     indicator.RealizedVolatility(target),
		Beta:           indicator.RollingBeta(target, benchmark),
	}

	if interval.IsIntraday() {
		report.VWAP = indicator.ComputeVWAP(target, d.cfg.Location)
		report.Snapbacks = indicator.DetectSnapbacks(report.VWAP)
	}

	if info, ok := profile.Analyze(report.Profile); ok {
		report.ProfileInfo = &info
	}

	if summary, ok := portfolio.Summarize(target); ok {
		summary.Risk = portfolio.RiskOf(target, &benchmark)
		report.Summary = &summary
	}

	d.logger.Info().Msgf("ticker report %s for %s (%s/%s): %d bars, %d snapbacks",
		report.ID, report.Ticker, period, interval, target.Len(), len(report.Snapbacks))

	return report, nil
}

// MarketReport computes summary rows, the weekly return correlation, the sector
// breakdown and recent news of the tickers over the window. Summary rows carry
// risk rollups against the benchmark.
func (d *Dashboard) MarketReport(ctx context.Context, tickers []string, period shared.Period, interval shared.Interval) (*MarketReport, error) {
	err := shared.ValidateWindow(period, interval)
	if err != nil {
		return nil, err
	}

	tickers = uniqueTickers(tickers)
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	fetch := uniqueTickers(append(slices.Clone(tickers), d.cfg.Benchmark))
	series, err := d.fetchAll(ctx, fetch, period, interval)
	if err != nil {
		return nil, fmt.Errorf("fetching market data: %w", err)
	}

	sectors, err := d.fetchSectors(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetching sectors: %w", err)
	}

	news, err := d.fetchNews(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}

	summaries, err := d.summarize(ctx, tickers, series)
	if err != nil {
		return nil, fmt.Errorf("summarizing market data: %w", err)
	}

	list := ordered(tickers, series)

	report := &MarketReport{
		Header:      newHeader(period, interval),
		Tickers:     tickers,
		Summaries:   summaries,
		Correlation: correlation.Weekly(shared.AlignCloses(list...), d.cfg.Location),
		Sectors:     portfolio.SectorBreakdown(tickers, sectors),
		News:        news,
	}

	d.logger.Info().Msgf("market report %s for %d tickers (%s/%s): %d summaries, %d articles",
		report.ID, len(tickers), period, interval, len(summaries), len(news))

	return report, nil
}

// PortfolioReport computes the position rows, cumulative return, weekly return
// correlation and sector breakdown of the holdings over the window. Closes are
// aligned across holdings before the cumulative return is computed.
func (d *Dashboard) PortfolioReport(ctx context.Context, holdings portfolio.Holdings, period shared.Period, interval shared.Interval) (*PortfolioReport, error) {
	err := shared.ValidateWindow(period, interval)
	if err != nil {
		return nil, err
	}

	err = holdings.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating holdings: %w", err)
	}

	tickers := holdings.Tickers()
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	series, err := d.fetchAll(ctx, tickers, period, interval)
	if err != nil {
		return nil, fmt.Errorf("fetching portfolio data: %w", err)
	}

	sectors, err := d.fetchSectors(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetching sectors: %w", err)
	}

	list := ordered(tickers, series)
	frame := shared.AlignCloses(list...)
	rows, err := d.holdingRows(ctx, holdings, series, sectors)
	if err != nil {
		return nil, fmt.Errorf("summarizing holdings: %w", err)
	}

	report := &PortfolioReport{
		Header:      newHeader(period, interval),
		Holdings:    holdings,
		Rows:        rows,
		Cumulative:  portfolio.CumulativeReturns(frame, holdings),
		Correlation: correlation.Weekly(frame, d.cfg.Location),
		Sectors:     portfolio.SectorBreakdown(tickers, sectors),
	}

	for idx := range rows {
		report.TotalValue += rows[idx].Value
	}

	d.logger.Info().Msgf("portfolio report %s for %d holdings (%s/%s): value %.2f",
		report.ID, len(tickers), period, interval, report.TotalValue)

	return report, nil
}
