package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when the store holds no data for a request.
var ErrNotFound = errors.New("not found")

// HistoricStoreConfig represents the historic data store configuration.
type HistoricStoreConfig struct {
	// FilePath is the filepath to the historic data.
	FilePath string
	// Location is the timezone bar dates are reported in.
	Location *time.Location
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *HistoricStoreConfig) Validate() error {
	var errs error
	if cfg.FilePath == "" {
		errs = errors.Join(errs, fmt.Errorf("historic data filepath cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// storeKey identifies a stored series.
type storeKey struct {
	ticker   string
	interval shared.Interval
}

// HistoricStore represents file-backed historic ticker data, serving offline runs.
type HistoricStore struct {
	cfg    *HistoricStoreConfig
	loc    *time.Location
	series map[storeKey]shared.Series
	meta   map[string]shared.Metadata
	news   map[string][]shared.Article
}

// Ensure the HistoricStore implements the collaborator interfaces.
var _ shared.BarFetcher = (*HistoricStore)(nil)
var _ shared.MetadataFetcher = (*HistoricStore)(nil)
var _ shared.NewsFetcher = (*HistoricStore)(nil)

// loadHistoricData loads the historic data from the provided file path.
func loadHistoricData(filepath string) (gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading historic data from file with path '%s': %w", filepath, err)
	}

	if !gjson.ValidBytes(readb) {
		return gjson.Result{}, fmt.Errorf("historic data at '%s' is not valid json", filepath)
	}

	return gjson.ParseBytes(readb), nil
}

// NewHistoricStore initializes a new historic data store.
func NewHistoricStore(cfg *HistoricStoreConfig) (*HistoricStore, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating historic store config: %w", err)
	}

	data, err := loadHistoricData(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("loading historic data: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = shared.ExchangeLocation()
	}

	store := &HistoricStore{
		cfg:    cfg,
		loc:    loc,
		series: make(map[storeKey]shared.Series),
		meta:   make(map[string]shared.Metadata),
		news:   make(map[string][]shared.Article),
	}

	data.Get("series").ForEach(func(_, entry gjson.Result) bool {
		ticker := entry.Get("ticker").String()
		interval, perr := shared.ParseInterval(entry.Get("interval").String())
		if perr != nil {
			err = fmt.Errorf("series %s: %w", ticker, perr)
			return false
		}

		bars, perr := shared.ParseBars(entry.Get("bars").Array(), loc)
		if perr != nil {
			err = fmt.Errorf("series %s: %w", ticker, perr)
			return false
		}

		series := shared.NewSeries(ticker, interval, bars)
		if verr := series.Validate(); verr != nil {
			err = verr
			return false
		}

		store.series[storeKey{ticker: ticker, interval: interval}] = series
		store.meta[ticker] = shared.Metadata{Ticker: ticker, Sector: entry.Get("sector").String()}

		entry.Get("news").ForEach(func(_, article gjson.Result) bool {
			store.news[ticker] = append(store.news[ticker], shared.Article{
				Title: article.Get("title").String(),
				Link:  article.Get("url").String(),
				Image: article.Get("image").String(),
			})
			return true
		})

		return true
	})
	if err != nil {
		return nil, fmt.Errorf("parsing historic data: %w", err)
	}

	cfg.Logger.Info().Msgf("loaded %d historic series for %d tickers from %s",
		len(store.series), len(store.meta), cfg.FilePath)

	return store, nil
}

// Tickers returns the number of tickers held by the store.
func (s *HistoricStore) Tickers() int {
	return len(s.meta)
}

// FetchBars returns the stored bars of the ticker over the period, measured back
// from the last stored bar. Weekly, monthly and quarterly requests are
// aggregated from stored daily bars when not stored directly.
func (s *HistoricStore) FetchBars(_ context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error) {
	err := shared.ValidateWindow(period, interval)
	if err != nil {
		return shared.Series{}, err
	}

	series, ok := s.series[storeKey{ticker: ticker, interval: interval}]
	if !ok {
		daily, found := s.series[storeKey{ticker: ticker, interval: shared.OneDay}]
		if !found {
			return shared.Series{}, fmt.Errorf("%w: %s bars for %s", ErrNotFound, interval, ticker)
		}

		bars, err := aggregateBars(daily.Bars, interval, s.loc)
		if err != nil {
			return shared.Series{}, fmt.Errorf("%w: %s bars for %s", ErrNotFound, interval, ticker)
		}

		series = shared.NewSeries(ticker, interval, bars)
	}

	last, ok := series.Last()
	if !ok {
		return series, nil
	}

	return series.Between(period.Start(last.Date), last.Date), nil
}

// FetchTickerMetadata returns the stored metadata of the ticker.
func (s *HistoricStore) FetchTickerMetadata(_ context.Context, ticker string) (shared.Metadata, error) {
	meta, ok := s.meta[ticker]
	if !ok {
		return shared.Metadata{}, fmt.Errorf("%w: metadata for %s", ErrNotFound, ticker)
	}

	return meta, nil
}

// FetchRecentNews returns up to count stored articles of the ticker.
func (s *HistoricStore) FetchRecentNews(_ context.Context, ticker string, count int) ([]shared.Article, error) {
	articles := s.news[ticker]
	if count <= 0 {
		return []shared.Article{}, nil
	}
	if count < len(articles) {
		articles = articles[:count]
	}

	out := make([]shared.Article, len(articles))
	copy(out, articles)

	return out, nil
}
