package fetch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/go-co-op/gocron"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupManager(t *testing.T, upstream *mockFetcher, windows []Window) (*Manager, *CachedFetcher) {
	c := setupCachedFetcher(t, upstream)
	mgr, err := NewManager(&ManagerConfig{
		Windows:         windows,
		Fetcher:         c,
		JobScheduler:    gocron.NewScheduler(time.UTC),
		RefreshInterval: time.Millisecond * 50,
		Workers:         2,
		Logger:          &log.Logger,
	})
	assert.NoError(t, err)

	return mgr, c
}

func TestFetchManagerConfigValidate(t *testing.T) {
	logger := zerolog.New(nil)
	baseCfg := &ManagerConfig{
		Windows:         []Window{{Ticker: "AAPL", Period: shared.OneMonthPeriod, Interval: shared.OneDay}},
		Fetcher:         setupCachedFetcher(t, newMockFetcher()),
		JobScheduler:    gocron.NewScheduler(time.UTC),
		RefreshInterval: time.Minute,
		Logger:          &logger,
	}

	tests := []struct {
		name        string
		modify      func(cfg *ManagerConfig)
		wantErr     bool
		errContains []string
	}{
		{
			name:    "valid config returns nil",
			modify:  func(cfg *ManagerConfig) {},
			wantErr: false,
		},
		{
			name:        "missing Windows",
			modify:      func(cfg *ManagerConfig) { cfg.Windows = nil },
			wantErr:     true,
			errContains: []string{"no windows provided"},
		},
		{
			name:        "non-positive RefreshInterval",
			modify:      func(cfg *ManagerConfig) { cfg.RefreshInterval = 0 },
			wantErr:     true,
			errContains: []string{"refresh interval must be positive"},
		},
		{
			name: "multiple missing fields",
			modify: func(cfg *ManagerConfig) {
				*cfg = ManagerConfig{}
			},
			wantErr: true,
			errContains: []string{
				"no windows provided",
				"fetcher cannot be nil",
				"job scheduler cannot be nil",
				"refresh interval must be positive",
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

func TestManagerRefreshAll(t *testing.T) {
	upstream := newMockFetcher()
	upstream.failTicker = "FAIL"
	windows := []Window{
		{Ticker: "AAPL", Period: shared.OneMonthPeriod, Interval: shared.OneDay},
		{Ticker: "MSFT", Period: shared.OneMonthPeriod, Interval: shared.OneDay},
		{Ticker: "XOM", Period: shared.OneMonthPeriod, Interval: shared.OneDay},
		{Ticker: "FAIL", Period: shared.OneMonthPeriod, Interval: shared.OneDay},
	}
	mgr, c := setupManager(t, upstream, windows)
	assert.True(t, mgr.LastRun().IsZero())

	// Ensure every window is refreshed and failures are reported.
	err := mgr.RefreshAll(context.Background())
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "FAIL 1mo/1d"))
	refreshed, failed := mgr.Counts()
	assert.Equal(t, refreshed, uint64(3))
	assert.Equal(t, failed, uint64(1))
	assert.False(t, mgr.LastRun().IsZero())

	// Ensure refreshed windows are served from the cache.
	_, err = c.FetchBars(context.Background(), "MSFT", shared.OneMonthPeriod, shared.OneDay)
	assert.NoError(t, err)
	assert.Equal(t, upstream.calls("MSFT"), 1)

	// Ensure a cancelled context stops the refresh.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mgr.RefreshAll(ctx)
	assert.Error(t, err)
}

func TestManagerRun(t *testing.T) {
	upstream := newMockFetcher()
	windows := []Window{{Ticker: "AAPL", Period: shared.OneDayPeriod, Interval: shared.FiveMinute}}
	mgr, _ := setupManager(t, upstream, windows)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- mgr.Run(ctx)
	}()

	// Ensure the scheduled job refreshes the tracked windows repeatedly.
	deadline := time.After(time.Second * 5)
	for upstream.calls("AAPL") < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for scheduled refreshes")
		case <-time.After(time.Millisecond * 10):
		}
	}

	// Ensure the manager can be gracefully terminated.
	cancel()
	assert.NoError(t, <-done)
}
