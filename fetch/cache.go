package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// DefaultBarTTL is the default lifetime of cached bar series and news.
	DefaultBarTTL = time.Minute * 15
	// DefaultMetadataTTL is the default lifetime of cached ticker metadata.
	DefaultMetadataTTL = time.Hour
	// cleanupInterval is the interval expired cache entries are purged at.
	cleanupInterval = time.Minute * 10
)

// CachedFetcherConfig represents the configuration of the caching fetcher.
type CachedFetcherConfig struct {
	// Bars is the upstream bar fetcher.
	Bars shared.BarFetcher
	// Metadata is the upstream metadata fetcher.
	Metadata shared.MetadataFetcher
	// News is the upstream news fetcher.
	News shared.NewsFetcher
	// BarTTL is the lifetime of cached bars and news.
	BarTTL time.Duration
	// MetadataTTL is the lifetime of cached metadata.
	MetadataTTL time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *CachedFetcherConfig) Validate() error {
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
	if cfg.BarTTL < 0 || cfg.MetadataTTL < 0 {
		errs = errors.Join(errs, fmt.Errorf("cache ttl cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// CacheStats represents cache hit and miss counts.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// CachedFetcher memoizes upstream fetches with per-kind expiry.
type CachedFetcher struct {
	cfg    *CachedFetcherConfig
	store  *cache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Ensure the CachedFetcher implements the collaborator interfaces.
var _ shared.BarFetcher = (*CachedFetcher)(nil)
var _ shared.MetadataFetcher = (*CachedFetcher)(nil)
var _ shared.NewsFetcher = (*CachedFetcher)(nil)

// NewCachedFetcher initializes a new caching fetcher.
func NewCachedFetcher(cfg *CachedFetcherConfig) (*CachedFetcher, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating cached fetcher config: %w", err)
	}

	if cfg.BarTTL == 0 {
		cfg.BarTTL = DefaultBarTTL
	}
	if cfg.MetadataTTL == 0 {
		cfg.MetadataTTL = DefaultMetadataTTL
	}

	return &CachedFetcher{
		cfg:   cfg,
		store: cache.New(cfg.BarTTL, cleanupInterval),
	}, nil
}

// barKey returns the cache key of a bar window.
func barKey(ticker string, period shared.Period, interval shared.Interval) string {
	return fmt.Sprintf("bars/%s/%s/%s", ticker, period, interval)
}

// lookup returns the cached value of the provided key, tracking hits and misses.
func (c *CachedFetcher) lookup(key string) (any, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Inc()
		return v, true
	}

	c.misses.Inc()
	return nil, false
}

// FetchBars returns the cached series of the window or fetches and caches it.
// Failed fetches are not cached.
func (c *CachedFetcher) FetchBars(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error) {
	if v, ok := c.lookup(barKey(ticker, period, interval)); ok {
		return v.(shared.Series), nil
	}

	return c.Refresh(ctx, ticker, period, interval)
}

// Refresh fetches the window from upstream and replaces its cached series.
func (c *CachedFetcher) Refresh(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error) {
	series, err := c.cfg.Bars.FetchBars(ctx, ticker, period, interval)
	if err != nil {
		return shared.Series{}, err
	}

	c.store.Set(barKey(ticker, period, interval), series, c.cfg.BarTTL)

	return series, nil
}

// FetchTickerMetadata returns the cached metadata of the ticker or fetches and caches it.
func (c *CachedFetcher) FetchTickerMetadata(ctx context.Context, ticker string) (shared.Metadata, error) {
	key := "meta/" + ticker
	if v, ok := c.lookup(key); ok {
		return v.(shared.Metadata), nil
	}

	meta, err := c.cfg.Metadata.FetchTickerMetadata(ctx, ticker)
	if err != nil {
		return shared.Metadata{}, err
	}

	c.store.Set(key, meta, c.cfg.MetadataTTL)

	return meta, nil
}

// FetchRecentNews returns the cached articles of the ticker or fetches and caches them.
func (c *CachedFetcher) FetchRecentNews(ctx context.Context, ticker string, count int) ([]shared.Article, error) {
	key := fmt.Sprintf("news/%s/%d", ticker, count)
	if v, ok := c.lookup(key); ok {
		return v.([]shared.Article), nil
	}

	articles, err := c.cfg.News.FetchRecentNews(ctx, ticker, count)
	if err != nil {
		return nil, err
	}

	c.store.Set(key, articles, c.cfg.BarTTL)

	return articles, nil
}

// Stats returns the cache statistics.
func (c *CachedFetcher) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.store.ItemCount(),
	}
}

// Flush evicts every cached entry.
func (c *CachedFetcher) Flush() {
	c.store.Flush()
	c.cfg.Logger.Debug().Msg("flushed fetch cache")
}
