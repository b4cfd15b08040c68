package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// maxWorkers is the default number of concurrent refresh workers.
	maxWorkers = 8
	// refreshTimeout is the deadline of a single window refresh.
	refreshTimeout = time.Second * 30
)

// Window identifies a tracked (ticker, period, interval) bar window.
type Window struct {
	Ticker   string
	Period   shared.Period
	Interval shared.Interval
}

// String stringifies the window.
func (w Window) String() string {
	return fmt.Sprintf("%s %s/%s", w.Ticker, w.Period, w.Interval)
}

// Refresher defines the requirements for replacing a cached bar window.
type Refresher interface {
	// Refresh fetches the window from upstream and replaces its cached series.
	Refresh(ctx context.Context, ticker string, period shared.Period, interval shared.Interval) (shared.Series, error)
}

// ManagerConfig represents the configuration for the refresh manager.
type ManagerConfig struct {
	// Windows are the tracked bar windows.
	Windows []Window
	// Fetcher refreshes cached windows.
	Fetcher Refresher
	// JobScheduler represents the job scheduler.
	JobScheduler *gocron.Scheduler
	// RefreshInterval is the interval between refreshes.
	RefreshInterval time.Duration
	// Workers is the maximum number of concurrent refreshes.
	Workers int
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error
	if len(cfg.Windows) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no windows provided for refresh manager"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("fetcher cannot be nil"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.RefreshInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("refresh interval must be positive"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager keeps tracked bar windows warm by refreshing them on a schedule.
type Manager struct {
	cfg       *ManagerConfig
	workers   chan struct{}
	lastRun   atomic.Time
	refreshed atomic.Uint64
	failed    atomic.Uint64
}

// NewManager initializes the refresh manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating manager config: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = maxWorkers
	}

	mgr := &Manager{
		cfg:     cfg,
		workers: make(chan struct{}, workers),
	}

	return mgr, nil
}

// refreshWindow refreshes a single window.
func (m *Manager) refreshWindow(ctx context.Context, w Window) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	series, err := m.cfg.Fetcher.Refresh(ctx, w.Ticker, w.Period, w.Interval)
	if err != nil {
		m.failed.Inc()
		return fmt.Errorf("refreshing %s: %w", w, err)
	}

	m.refreshed.Inc()
	m.cfg.Logger.Debug().Msgf("refreshed %s with %d bars", w, series.Len())

	return nil
}

// RefreshAll refreshes every tracked window using the bounded worker pool and
// returns the joined refresh errors.
func (m *Manager) RefreshAll(ctx context.Context) error {
	var wg sync.WaitGroup
	var mtx sync.Mutex
	var errs error

loop:
	for _, w := range m.cfg.Windows {
		select {
		case <-ctx.Done():
			break loop
		case m.workers <- struct{}{}:
		}

		wg.Add(1)
		go func(w Window) {
			defer func() {
				<-m.workers
				wg.Done()
			}()

			err := m.refreshWindow(ctx, w)
			if err != nil {
				mtx.Lock()
				errs = errors.Join(errs, err)
				mtx.Unlock()
			}
		}(w)
	}

	wg.Wait()
	if ctx.Err() != nil {
		return errors.Join(errs, ctx.Err())
	}

	m.lastRun.Store(time.Now())

	return errs
}

// LastRun returns the time the last refresh completed, zero if none has.
func (m *Manager) LastRun() time.Time {
	return m.lastRun.Load()
}

// Counts returns the number of successful and failed window refreshes.
func (m *Manager) Counts() (uint64, uint64) {
	return m.refreshed.Load(), m.failed.Load()
}

// Run schedules periodic refreshes until the provided context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	_, err := m.cfg.JobScheduler.Every(m.cfg.RefreshInterval).SingletonMode().Do(func() {
		err := m.RefreshAll(ctx)
		if err != nil {
			m.cfg.Logger.Error().Msgf("refreshing tracked windows: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh job: %w", err)
	}

	m.cfg.JobScheduler.StartAsync()
	m.cfg.Logger.Info().Msgf("refreshing %d windows every %s", len(m.cfg.Windows), m.cfg.RefreshInterval)

	<-ctx.Done()
	m.cfg.JobScheduler.Stop()

	return nil
}
