package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/quant/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://financialmodelingprep.com/stable"
	// defaultTimeout is the default http request timeout.
	defaultTimeout = time.Second * 10

	eodPath     = "/historical-price-eod/full"
	profilePath = "/profile"
	newsPath    = "/news/stock"
)

var (
	// ErrUnsupportedInterval is returned for intervals the provider cannot serve.
	ErrUnsupportedInterval = errors.New("unsupported interval")
	// ErrUnexpectedStatus is returned for non-200 provider responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// intradayPaths maps intraday intervals to their chart endpoints.
var intradayPaths = map[shared.Interval]string{
	shared.FiveMinute:    "/historical-chart/5min",
	shared.FifteenMinute: "/historical-chart/15min",
	shared.ThirtyMinute:  "/historical-chart/30min",
	shared.SixtyMinute:   "/historical-chart/1hour",
}

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIkey is the FMP API Key.
	APIKey string
	// BaseURL is the api base url, defaults to the stable FMP api.
	BaseURL string
	// Timeout is the request timeout.
	Timeout time.Duration
	// Location is the timezone bar dates are reported in.
	Location *time.Location
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *FMPConfig) Validate() error {
	var errs error
	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
	loc   *time.Location
}

// Ensure the FMPClient implements the collaborator interfaces.
var _ shared.BarFetcher = (*FMPClient)(nil)
var _ shared.MetadataFetcher = (*FMPClient)(nil)
var _ shared.NewsFetcher = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) (*FMPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating fmp config: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	loc := cfg.Location
	if loc == nil {
		loc = shared.ExchangeLocation()
	}

	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: cfg.Timeout},
		loc:   loc,
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *FMPClient) formURL(path string, params url.Values) string {
	var b strings.Builder
	b.WriteString(c.cfg.BaseURL)
	b.WriteString(path)
	b.WriteString("?")
	b.WriteString(params.Encode())

	return b.String()
}

// get issues a GET request for the provided path and returns the parsed json body.
func (c *FMPClient) get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	params.Set("apikey", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.formURL(path, params), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request for %s: %w", path, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("requesting %s: %w", path, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		c.cfg.Logger.Debug().Msgf("malformed %s payload: %s", path, spew.Sdump(body))
		return gjson.Result{}, fmt.Errorf("malformed json response from %s", path)
	}

	return gjson.ParseBytes(body), nil
}

// FetchBars fetches the bars of the provided ticker over a (period, interval)
// window ending now.
func (c *FMPClient) FetchBars(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error) {
	now, _, err := shared.NewYorkTime()
	if err != nil {
		return shared.Series{}, err
	}

	return c.fetchBarsAt(ctx, ticker, period, interval, now.In(c.loc))
}

// fetchBarsAt fetches the bars of the provided ticker over a (period, interval)
// window ending at end.
func (c *FMPClient) fetchBarsAt(ctx context.Context, ticker string, period shared.Period, interval shared.Interval, end time.Time) (shared.Series, error) {
	err := shared.ValidateWindow(period, interval)
	if err != nil {
		return shared.Series{}, err
	}

	start := period.Start(end)
	params := url.Values{}
	params.Add("symbol", ticker)
	params.Add("from", start.Format(shared.DayLayout))
	params.Add("to", end.Format(shared.DayLayout))

	var path string
	switch interval {
	case shared.FiveMinute, shared.FifteenMinute, shared.ThirtyMinute, shared.SixtyMinute:
		path = intradayPaths[interval]
	case shared.OneDay, shared.OneWeek, shared.OneMonth, shared.ThreeMonth:
		path = eodPath
	default:
		return shared.Series{}, fmt.Errorf("%w: %s", ErrUnsupportedInterval, interval)
	}

	data, err := c.get(ctx, path, params)
	if err != nil {
		return shared.Series{}, fmt.Errorf("fetching %s bars for %s: %w", interval, ticker, err)
	}

	bars, err := shared.ParseBars(data.Array(), c.loc)
	if err != nil {
		return shared.Series{}, fmt.Errorf("parsing %s bars for %s: %w", interval, ticker, err)
	}

	switch interval {
	case shared.OneWeek, shared.OneMonth, shared.ThreeMonth:
		bars, err = aggregateBars(bars, interval, c.loc)
		if err != nil {
			return shared.Series{}, err
		}
	}

	series := shared.NewSeries(ticker, interval, bars)
	if interval.IsIntraday() {
		series = series.Between(start, end)
	}

	return series, nil
}

// FetchTickerMetadata fetches the company profile of the provided ticker.
func (c *FMPClient) FetchTickerMetadata(ctx context.Context, ticker string) (shared.Metadata, error) {
	params := url.Values{}
	params.Add("symbol", ticker)

	data, err := c.get(ctx, profilePath, params)
	if err != nil {
		return shared.Metadata{}, fmt.Errorf("fetching profile for %s: %w", ticker, err)
	}

	return shared.Metadata{
		Ticker: ticker,
		Sector: data.Get("0.sector").String(),
	}, nil
}

// FetchRecentNews fetches up to count recent articles for the provided ticker.
func (c *FMPClient) FetchRecentNews(ctx context.Context, ticker string, count int) ([]shared.Article, error) {
	params := url.Values{}
	params.Add("symbols", ticker)
	params.Add("limit", strconv.Itoa(count))

	data, err := c.get(ctx, newsPath, params)
	if err != nil {
		return nil, fmt.Errorf("fetching news for %s: %w", ticker, err)
	}

	results := data.Array()
	articles := make([]shared.Article, 0, len(results))
	for idx := range results {
		if len(articles) == count {
			break
		}

		articles = append(articles, shared.Article{
			Title: results[idx].Get("title").String(),
			Link:  results[idx].Get("url").String(),
			Image: results[idx].Get("image").String(),
		})
	}

	return articles, nil
}
