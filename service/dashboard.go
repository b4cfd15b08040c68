package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/quant/portfolio"
	"github.com/dnldd/quant/shared"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// DefaultBenchmark is the benchmark ticker betas are measured against.
	DefaultBenchmark = "^GSPC"
	// defaultWorkers is the default number of concurrent per-ticker computations.
	defaultWorkers = 8
	// defaultNewsCount is the default number of articles requested per ticker.
	defaultNewsCount = 3
)

var (
	// MarketTickers are the broad market indices, commodities, currencies and yields.
	MarketTickers = []string{"^GSPC", "^IXIC", "^RUT", "^GSPTSE", "^VIX", "GC=F", "DX-Y.NYB",
		"^XDC", "^FVX", "^TYX"}
	// SectorTickers are the sector select ETFs.
	SectorTickers = []string{"XLC", "XLY", "XLP", "XLE", "XLF", "XLV", "XLI", "XLB", "XLRE",
		"XLK", "XLU"}
)

// DashboardConfig represents the configuration of the dashboard service.
type DashboardConfig struct {
	// Bars fetches bar series.
	Bars shared.BarFetcher
	// Metadata fetches ticker metadata.
	Metadata shared.MetadataFetcher
	// News fetches ticker news.
	News shared.NewsFetcher
	// Benchmark is the ticker betas are measured against.
	Benchmark string
	// Workers is the maximum number of concurrent per-ticker computations.
	Workers int
	// NumBins is the number of volume profile bins.
	NumBins int
	// NewsCount is the number of articles requested per ticker.
	NewsCount int
	// Location is the exchange timezone used for day and week grouping.
	Location *time.Location
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *DashboardConfig) Validate() error {
	var errs error
	if cfg.Bars == nil {
		errs = errors.Join(errs, fmt.Errorf("bar fetcher cannot be nil"))
	}
	if cfg.Metadata == nil {
		errs = errors.Join(errs, fmt.Errorf("metadata fetcher cannot be nil"))
	}
	if cfg.News == nil {
		errs = errors.Join(errs, fmt.Errorf("news fetcher cannot be nil"))
	}
	if cfg.Workers < 0 {
		errs = errors.Join(errs, fmt.Errorf("workers cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Dashboard produces the analytics reports backing the dashboard pages.
type Dashboard struct {
	cfg    *DashboardConfig
	logger zerolog.Logger
}

// NewDashboard initializes a new dashboard service.
func NewDashboard(cfg *DashboardConfig) (*Dashboard, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating dashboard config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	cfg.Benchmark = strings.ToUpper(strings.TrimSpace(cfg.Benchmark))
	if cfg.Benchmark == "" {
		cfg.Benchmark = DefaultBenchmark
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.NewsCount <= 0 {
		cfg.NewsCount = defaultNewsCount
	}
	if cfg.Location == nil {
		cfg.Location = shared.ExchangeLocation()
	}

	return &Dashboard{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "dashboard").Logger(),
	}, nil
}

// fetchSeries fetches the bars of the ticker, degrading failures to an empty series.
func (d *Dashboard) fetchSeries(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) shared.Series {
	series, err := d.cfg.Bars.FetchBars(ctx, ticker, period, interval)
	if err != nil {
		d.logger.Error().Msgf("fetching %s bars for %s: %v", interval, ticker, err)
		return shared.NewSeries(ticker, interval, nil)
	}

	if err := series.Validate(); err != nil && !errors.Is(err, shared.ErrEmptySeries) {
		d.logger.Error().Msgf("discarding %s bars for %s: %v", interval, ticker, err)
		d.logger.Debug().Msgf("discarded series: %s", spew.Sdump(series))
		return shared.NewSeries(ticker, interval, nil)
	}

	return series
}

// fetchSector fetches the sector of the ticker, degrading failures to an empty sector.
func (d *Dashboard) fetchSector(ctx context.Context, ticker string) string {
	meta, err := d.cfg.Metadata.FetchTickerMetadata(ctx, ticker)
	if err != nil {
		d.logger.Error().Msgf("fetching metadata for %s: %v", ticker, err)
		return ""
	}

	return meta.Sector
}

// fetchAll fetches the bars of every ticker concurrently, keyed by ticker.
func (d *Dashboard) fetchAll(ctx context.Context, tickers []string, period shared.Period, interval shared.Interval) (map[string]shared.Series, error) {
	return shared.MapTickers(ctx, tickers, d.cfg.Workers,
		func(ctx context.Context, ticker string) (shared.Series, error) {
			return d.fetchSeries(ctx, ticker, period, interval), nil
		})
}

// fetchSectors fetches the sector of every ticker concurrently, keyed by ticker.
func (d *Dashboard) fetchSectors(ctx context.Context, tickers []string) (map[string]string, error) {
	return shared.MapTickers(ctx, tickers, d.cfg.Workers,
		func(ctx context.Context, ticker string) (string, error) {
			return d.fetchSector(ctx, ticker), nil
		})
}

// fetchNews fetches recent news for every ticker, dropping articles whose title
// was already seen. Article order follows the ticker order.
func (d *Dashboard) fetchNews(ctx context.Context, tickers []string) ([]shared.Article, error) {
	byTicker, err := shared.MapTickers(ctx, tickers, d.cfg.Workers,
		func(ctx context.Context, ticker string) ([]shared.Article, error) {
			articles, err := d.cfg.News.FetchRecentNews(ctx, ticker, d.cfg.NewsCount)
			if err != nil {
				d.logger.Error().Msgf("fetching news for %s: %v", ticker, err)
				return nil, nil
			}

			return articles, nil
		})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	news := make([]shared.Article, 0, len(tickers)*d.cfg.NewsCount)
	for _, ticker := range tickers {
		for _, article := range byTicker[ticker] {
			if _, ok := seen[article.Title]; ok {
				continue
			}

			seen[article.Title] = struct{}{}
			news = append(news, article)
		}
	}

	return news, nil
}

// summarize computes the summary row and risk rollup of every ticker
// concurrently, returned in ticker order. Tickers without data are skipped.
func (d *Dashboard) summarize(ctx context.Context, tickers []string, series map[string]shared.Series) ([]portfolio.Summary, error) {
	benchmark := series[d.cfg.Benchmark]

	type row struct {
		summary portfolio.Summary
		ok      bool
	}

	byTicker, err := shared.MapTickers(ctx, tickers, d.cfg.Workers,
		func(_ context.Context, ticker string) (row, error) {
			s, ok := series[ticker]
			if !ok {
				return row{}, nil
			}

			summary, ok := portfolio.Summarize(s)
			if !ok {
				return row{}, nil
			}

			summary.Risk = portfolio.RiskOf(s, &benchmark)

			return row{summary: summary, ok: true}, nil
		})
	if err != nil {
		return nil, err
	}

	summaries := make([]portfolio.Summary, 0, len(tickers))
	for _, ticker := range tickers {
		if r := byTicker[ticker]; r.ok {
			summaries = append(summaries, r.summary)
		}
	}

	return summaries, nil
}

// holdingRows computes the portfolio row of every holding concurrently,
// returned in holding ticker order and weighed against their total value.
func (d *Dashboard) holdingRows(ctx context.Context, holdings portfolio.Holdings, series map[string]shared.Series, sectors map[string]string) ([]portfolio.PortfolioRow, error) {
	tickers := holdings.Tickers()

	type row struct {
		row portfolio.PortfolioRow
		ok  bool
	}

	byTicker, err := shared.MapTickers(ctx, tickers, d.cfg.Workers,
		func(_ context.Context, ticker string) (row, error) {
			s, ok := series[ticker]
			if !ok {
				return row{}, nil
			}

			r, ok := portfolio.HoldingRow(s, holdings[ticker], sectors[ticker])

			return row{row: r, ok: ok}, nil
		})
	if err != nil {
		return nil, err
	}

	rows := make([]portfolio.PortfolioRow, 0, len(tickers))
	for _, ticker := range tickers {
		if r := byTicker[ticker]; r.ok {
			rows = append(rows, r.row)
		}
	}

	portfolio.WeighRows(rows)

	return rows, nil
}

// ordered returns the series of the provided tickers in ticker order.
func ordered(tickers []string, series map[string]shared.Series) []shared.Series {
	out := make([]shared.Series, 0, len(tickers))
	for _, ticker := range tickers {
		s, ok := series[ticker]
		if !ok {
			continue
		}

		out = append(out, s)
	}

	return out
}
