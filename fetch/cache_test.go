package fetch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// mockFetcher counts upstream calls and serves canned data.
type mockFetcher struct {
	mtx        sync.Mutex
	barCalls   map[string]int
	metaCalls  int
	newsCalls  int
	failTicker string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{barCalls: make(map[string]int)}
}

func (m *mockFetcher) FetchBars(_ context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error) {
	m.mtx.Lock()
	m.barCalls[ticker]++
	m.mtx.Unlock()

	if ticker == m.failTicker {
		return shared.Series{}, errors.New("upstream unavailable")
	}

	bars := []shared.Bar{{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10,
		Date: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)}}

	return shared.NewSeries(ticker, interval, bars), nil
}

func (m *mockFetcher) FetchTickerMetadata(_ context.Context, ticker string) (shared.Metadata, error) {
	m.mtx.Lock()
	m.metaCalls++
	m.mtx.Unlock()

	if ticker == m.failTicker {
		return shared.Metadata{}, errors.New("upstream unavailable")
	}

	return shared.Metadata{Ticker: ticker, Sector: "Technology"}, nil
}

func (m *mockFetcher) FetchRecentNews(_ context.Context, ticker string, count int) ([]shared.Article, error) {
	m.mtx.Lock()
	m.newsCalls++
	m.mtx.Unlock()

	return []shared.Article{{Title: ticker + " news"}}, nil
}

func (m *mockFetcher) calls(ticker string) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.barCalls[ticker]
}

func setupCachedFetcher(t *testing.T, upstream *mockFetcher) *CachedFetcher {
	c, err := NewCachedFetcher(&CachedFetcherConfig{
		Bars:     upstream,
		Metadata: upstream,
		News:     upstream,
		Logger:   &log.Logger,
	})
	assert.NoError(t, err)

	return c
}

func TestCachedFetcherConfigValidate(t *testing.T) {
	logger := zerolog.New(nil)
	upstream := newMockFetcher()
	baseCfg := &CachedFetcherConfig{
		Bars:     upstream,
		Metadata: upstream,
		News:     upstream,
		Logger:   &logger,
	}

	tests := []struct {
		name        string
		modify      func(cfg *CachedFetcherConfig)
		wantErr     bool
		errContains []string
	}{
		{
			name:    "valid config returns nil",
			modify:  func(cfg *CachedFetcherConfig) {},
			wantErr: false,
		},
		{
			name:        "negative ttl",
			modify:      func(cfg *CachedFetcherConfig) { cfg.BarTTL = -time.Second },
			wantErr:     true,
			errContains: []string{"cache ttl cannot be negative"},
		},
		{
			name: "multiple missing fields",
			modify: func(cfg *CachedFetcherConfig) {
				*cfg = CachedFetcherConfig{}
			},
			wantErr: true,
			errContains: []string{
				"bar fetcher cannot be nil",
				"metadata fetcher cannot be nil",
				"news fetcher cannot be nil",
				"logger cannot be nil",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *baseCfg
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				for _, substr := range tt.errContains {
					assert.True(t, strings.Contains(err.Error(), substr))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCachedFetcher(t *testing.T) {
	upstream := newMockFetcher()
	upstream.failTicker = "FAIL"
	c := setupCachedFetcher(t, upstream)
	ctx := context.Background()

	// Ensure defaults are applied.
	assert.Equal(t, c.cfg.BarTTL, DefaultBarTTL)
	assert.Equal(t, c.cfg.MetadataTTL, DefaultMetadataTTL)

	// Ensure repeated fetches of a window hit the cache.
	first, err := c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	second, err := c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	assert.Equal(t, first.Len(), second.Len())
	assert.Equal(t, upstream.calls("AAPL"), 1)

	// Ensure distinct windows are cached separately.
	_, err = c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneWeek)
	assert.NoError(t, err)
	assert.Equal(t, upstream.calls("AAPL"), 2)

	// Ensure failures are not cached.
	_, err = c.FetchBars(ctx, "FAIL", shared.OneMonthPeriod, shared.OneDay)
	assert.Error(t, err)
	_, err = c.FetchBars(ctx, "FAIL", shared.OneMonthPeriod, shared.OneDay)
	assert.Error(t, err)
	assert.Equal(t, upstream.calls("FAIL"), 2)

	// Ensure refreshes always reach upstream.
	_, err = c.Refresh(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	assert.Equal(t, upstream.calls("AAPL"), 3)

	// Ensure metadata and news are cached.
	for range 3 {
		meta, err := c.FetchTickerMetadata(ctx, "AAPL")
		assert.NoError(t, err)
		assert.Equal(t, meta.Sector, "Technology")

		news, err := c.FetchRecentNews(ctx, "AAPL", 1)
		assert.NoError(t, err)
		assert.Equal(t, len(news), 1)
	}
	assert.Equal(t, upstream.metaCalls, 1)
	assert.Equal(t, upstream.newsCalls, 1)

	_, err = c.FetchTickerMetadata(ctx, "FAIL")
	assert.Error(t, err)

	// Ensure statistics track lookups.
	stats := c.Stats()
	assert.Equal(t, stats.Hits, uint64(5))
	assert.Equal(t, stats.Misses, uint64(7))
	assert.Equal(t, stats.Entries, 4)

	// Ensure flushing evicts every entry.
	c.Flush()
	assert.Equal(t, c.Stats().Entries, 0)
	_, err = c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	assert.Equal(t, upstream.calls("AAPL"), 4)
}

func TestCachedFetcherExpiry(t *testing.T) {
	upstream := newMockFetcher()
	c, err := NewCachedFetcher(&CachedFetcherConfig{
		Bars:     upstream,
		Metadata: upstream,
		News:     upstream,
		BarTTL:   time.Millisecond * 20,
		Logger:   &log.Logger,
	})
	assert.NoError(t, err)

	// Ensure expired windows are fetched again.
	ctx := context.Background()
	_, err = c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	time.Sleep(time.Millisecond * 40)
	_, err = c.FetchBars(ctx, "AAPL", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	assert.Equal(t, upstream.calls("AAPL"), 2)
}
