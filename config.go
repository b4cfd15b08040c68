package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/quant/portfolio"
	"github.com/dnldd/quant/service"
	"github.com/dnldd/quant/shared"
	"github.com/joho/godotenv"
)

const (
	defaultPeriod          = "1y"
	defaultInterval        = "1d"
	defaultCacheTTLMinutes = 15
	defaultRefreshMinutes  = 5
)

// Config is the configuration struct for the service.
type Config struct {
	// Tickers are the tickers analyzed individually.
	Tickers []string
	// Holdings are the portfolio holdings, formatted as TICKER:SHARES pairs.
	Holdings string
	// FMPAPIkey is the FMP service API Key.
	FMPAPIKey string
	// DataFilepath is the filepath to offline historic data.
	DataFilepath string
	// Period is the look-back window ("1d" through "10y").
	Period string
	// Interval is the bar interval ("5m" through "3mo").
	Interval string
	// Benchmark is the ticker betas are measured against.
	Benchmark string
	// CacheTTLMinutes is the lifetime of cached bars in minutes.
	CacheTTLMinutes int
	// RefreshMinutes is the refresh interval of tracked windows in minutes.
	RefreshMinutes int
	// Watch keeps the tracked windows refreshed until interrupted.
	Watch bool
	// Overview adds the broad market and sector reports.
	Overview bool

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Tickers) == 0 && cfg.Holdings == "" && !cfg.Overview {
		errs = errors.Join(errs, fmt.Errorf("no tickers or holdings provided for quant service"))
	}
	if cfg.FMPAPIKey == "" && cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string without a data filepath"))
	}
	if _, err := portfolio.ParseHoldings(cfg.Holdings); err != nil {
		errs = errors.Join(errs, err)
	}

	period, err := shared.ParsePeriod(cfg.Period)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	interval, err := shared.ParseInterval(cfg.Interval)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if period != shared.UnknownPeriod && interval != shared.UnknownInterval {
		if err := shared.ValidateWindow(period, interval); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	if cfg.CacheTTLMinutes < 0 {
		errs = errors.Join(errs, fmt.Errorf("cache ttl cannot be negative"))
	}
	if cfg.Watch && cfg.RefreshMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("refresh interval must be positive when watching"))
	}

	return errs
}

// serviceConfig converts the validated config into the service configuration.
func (cfg *Config) serviceConfig() (*service.Config, error) {
	holdings, err := portfolio.ParseHoldings(cfg.Holdings)
	if err != nil {
		return nil, err
	}

	period, err := shared.ParsePeriod(cfg.Period)
	if err != nil {
		return nil, err
	}

	interval, err := shared.ParseInterval(cfg.Interval)
	if err != nil {
		return nil, err
	}

	return &service.Config{
		Tickers:         cfg.Tickers,
		Holdings:        holdings,
		FMPAPIKey:       cfg.FMPAPIKey,
		DataFilepath:    cfg.DataFilepath,
		Period:          period,
		Interval:        interval,
		Benchmark:       cfg.Benchmark,
		CacheTTL:        time.Duration(cfg.CacheTTLMinutes) * time.Minute,
		RefreshInterval: time.Duration(cfg.RefreshMinutes) * time.Minute,
		Watch:           cfg.Watch,
		Overview:        cfg.Overview,
	}, nil
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		def := defValue
		if def == "" {
			def = *value.(*string)
		}
		flag.StringVar(value.(*string), name, def, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		def := *value.(*int)
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = splitList(defValue)
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = splitList(s)
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	if cfg.Period == "" {
		cfg.Period = defaultPeriod
	}
	if cfg.Interval == "" {
		cfg.Interval = defaultInterval
	}
	if cfg.Benchmark == "" {
		cfg.Benchmark = service.DefaultBenchmark
	}
	if cfg.CacheTTLMinutes == 0 {
		cfg.CacheTTLMinutes = defaultCacheTTLMinutes
	}
	if cfg.RefreshMinutes == 0 {
		cfg.RefreshMinutes = defaultRefreshMinutes
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"tickers", &cfg.Tickers, "the tickers to analyze"},
		{"holdings", &cfg.Holdings, "the portfolio holdings, e.g. AAPL:10,MSFT:5"},
		{"fmpapikey", &cfg.FMPAPIKey, "the FMP api key"},
		{"datafilepath", &cfg.DataFilepath, "the offline historic data filepath"},
		{"period", &cfg.Period, "the look-back period"},
		{"interval", &cfg.Interval, "the bar interval"},
		{"benchmark", &cfg.Benchmark, "the beta benchmark ticker"},
		{"cachettl", &cfg.CacheTTLMinutes, "the bar cache ttl in minutes"},
		{"refresh", &cfg.RefreshMinutes, "the refresh interval in minutes"},
		{"watch", &cfg.Watch, "keep tracked windows refreshed until interrupted"},
		{"overview", &cfg.Overview, "include the broad market and sector reports"},
	}
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
