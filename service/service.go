package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/quant/fetch"
	"github.com/dnldd/quant/portfolio"
	"github.com/dnldd/quant/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents the configuration of the quant service.
type Config struct {
	// Tickers are the tickers ticker reports are produced for.
	Tickers []string
	// Holdings are the portfolio holdings.
	Holdings portfolio.Holdings
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// DataFilepath is the filepath to offline historic data, used instead of FMP when set.
	DataFilepath string
	// Period is the look-back window of every report.
	Period shared.Period
	// Interval is the bar interval of every report.
	Interval shared.Interval
	// Benchmark is the ticker betas are measured against.
	Benchmark string
	// CacheTTL is the lifetime of cached bars.
	CacheTTL time.Duration
	// RefreshInterval is the interval tracked windows are refreshed at while watching.
	RefreshInterval time.Duration
	// Watch keeps the service refreshing tracked windows until cancelled.
	Watch bool
	// Overview adds market reports over the broad market and sector tickers.
	Overview bool
	// Logger represents the application logger, defaults to the global logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error
	if len(cfg.Tickers) == 0 && len(cfg.Holdings) == 0 && !cfg.Overview {
		errs = errors.Join(errs, fmt.Errorf("no tickers or holdings provided for quant service"))
	}
	if cfg.FMPAPIKey == "" && cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("either an fmp api key or a data filepath is required"))
	}
	if err := shared.ValidateWindow(cfg.Period, cfg.Interval); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := cfg.Holdings.Validate(); err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.Watch && cfg.RefreshInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("refresh interval must be positive when watching"))
	}

	return errs
}

// Service represents the quant analytics service.
type Service struct {
	cfg       *Config
	dashboard *Dashboard
	cache     *fetch.CachedFetcher
	manager   *fetch.Manager
	logger    zerolog.Logger
}

// New initializes a new quant service, wiring the data provider, the fetch
// cache and, when watching, the refresh manager.
func New(cfg *Config) (*Service, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating service config: %w", err)
	}

	base := log.Logger
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	logger := base.With().Str("service", "quant").Logger()
	loc := shared.ExchangeLocation()

	type provider interface {
		shared.BarFetcher
		shared.MetadataFetcher
		shared.NewsFetcher
	}

	var upstream provider
	switch {
	case cfg.DataFilepath != "":
		storeLogger := logger.With().Str("component", "historicstore").Logger()
		upstream, err = fetch.NewHistoricStore(&fetch.HistoricStoreConfig{
			FilePath: cfg.DataFilepath,
			Location: loc,
			Logger:   &storeLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating historic store: %w", err)
		}
	default:
		fmpLogger := logger.With().Str("component", "fmp").Logger()
		upstream, err = fetch.NewFMPClient(&fetch.FMPConfig{
			APIKey:   cfg.FMPAPIKey,
			Location: loc,
			Logger:   &fmpLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating fmp client: %w", err)
		}
	}

	cacheLogger := logger.With().Str("component", "cache").Logger()
	cache, err := fetch.NewCachedFetcher(&fetch.CachedFetcherConfig{
		Bars:     upstream,
		Metadata: upstream,
		News:     upstream,
		BarTTL:   cfg.CacheTTL,
		Logger:   &cacheLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch cache: %w", err)
	}

	dashboard, err := NewDashboard(&DashboardConfig{
		Bars:      cache,
		Metadata:  cache,
		News:      cache,
		Benchmark: cfg.Benchmark,
		Location:  loc,
		Logger:    &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dashboard: %w", err)
	}

	svc := &Service{
		cfg:       cfg,
		dashboard: dashboard,
		cache:     cache,
		logger:    logger,
	}

	if cfg.Watch {
		tickers := uniqueTickers(append(append(cfg.Holdings.Tickers(), cfg.Tickers...), dashboard.cfg.Benchmark))
		windows := make([]fetch.Window, 0, len(tickers))
		for _, ticker := range tickers {
			windows = append(windows, fetch.Window{Ticker: ticker, Period: cfg.Period, Interval: cfg.Interval})
		}

		managerLogger := logger.With().Str("component", "refreshmanager").Logger()
		svc.manager, err = fetch.NewManager(&fetch.ManagerConfig{
			Windows:         windows,
			Fetcher:         cache,
			JobScheduler:    gocron.NewScheduler(loc),
			RefreshInterval: cfg.RefreshInterval,
			Logger:          &managerLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating refresh manager: %w", err)
		}
	}

	return svc, nil
}

// Dashboard returns the dashboard of the service.
func (s *Service) Dashboard() *Dashboard {
	return s.dashboard
}

// Reports represents the reports produced by a service pass.
type Reports struct {
	Portfolio *PortfolioReport
	Market    *MarketReport
	Tickers   []*TickerReport
	// Indices and Sectors are only set when an overview is requested.
	Indices *MarketReport
	Sectors *MarketReport
}

// Report produces the portfolio report of the configured holdings, the market
// report and a ticker report for each configured ticker.
func (s *Service) Report(ctx context.Context) (*Reports, error) {
	var reports Reports
	var err error

	if len(s.cfg.Holdings) > 0 {
		reports.Portfolio, err = s.dashboard.PortfolioReport(ctx, s.cfg.Holdings, s.cfg.Period, s.cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("creating portfolio report: %w", err)
		}
	}

	tickers := uniqueTickers(s.cfg.Tickers)
	if len(tickers) > 0 {
		reports.Market, err = s.dashboard.MarketReport(ctx, tickers, s.cfg.Period, s.cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("creating market report: %w", err)
		}
	}

	for _, ticker := range tickers {
		report, err := s.dashboard.TickerReport(ctx, ticker, s.cfg.Period, s.cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("creating ticker report for %s: %w", ticker, err)
		}

		reports.Tickers = append(reports.Tickers, report)
	}

	if s.cfg.Overview {
		reports.Indices, err = s.dashboard.MarketReport(ctx, MarketTickers, s.cfg.Period, s.cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("creating market overview: %w", err)
		}

		reports.Sectors, err = s.dashboard.MarketReport(ctx, SectorTickers, s.cfg.Period, s.cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("creating sector overview: %w", err)
		}
	}

	stats := s.cache.Stats()
	s.logger.Info().Msgf("reported %d tickers (cache hits %d, misses %d)",
		len(reports.Tickers), stats.Hits, stats.Misses)

	return &reports, nil
}

// Run produces the configured reports and, when watching, keeps the tracked
// windows refreshed until the provided context is cancelled.
func (s *Service) Run(ctx context.Context) (*Reports, error) {
	reports, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}

	if s.manager == nil {
		return reports, nil
	}

	err = s.manager.Run(ctx)
	if err != nil {
		return reports, fmt.Errorf("running refresh manager: %w", err)
	}

	return reports, nil
}
