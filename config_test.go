package main

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/quant/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func validConfig() Config {
	return Config{
		Tickers:         []string{"AAPL", "MSFT"},
		FMPAPIKey:       "apikey",
		Period:          "1y",
		Interval:        "1d",
		Benchmark:       "^GSPC",
		CacheTTLMinutes: 15,
		RefreshMinutes:  5,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr []string
	}{
		{
			name:    "valid config, live data",
			modify:  func(cfg *Config) {},
			wantErr: nil,
		},
		{
			name: "valid config, offline data",
			modify: func(cfg *Config) {
				cfg.FMPAPIKey = ""
				cfg.DataFilepath = "/tmp/historic.json"
			},
			wantErr: nil,
		},
		{
			name: "holdings only",
			modify: func(cfg *Config) {
				cfg.Tickers = nil
				cfg.Holdings = "AAPL:10,MSFT"
			},
			wantErr: nil,
		},
		{
			name: "overview only",
			modify: func(cfg *Config) {
				cfg.Tickers = nil
				cfg.Overview = true
			},
			wantErr: nil,
		},
		{
			name: "missing tickers and holdings",
			modify: func(cfg *Config) {
				cfg.Tickers = nil
			},
			wantErr: []string{"no tickers or holdings provided for quant service"},
		},
		{
			name: "missing both data sources",
			modify: func(cfg *Config) {
				cfg.FMPAPIKey = ""
			},
			wantErr: []string{"fmp api key cannot be an empty string"},
		},
		{
			name: "malformed holdings",
			modify: func(cfg *Config) {
				cfg.Holdings = "AAPL:-3"
			},
			wantErr: []string{"AAPL"},
		},
		{
			name: "unknown period and interval",
			modify: func(cfg *Config) {
				cfg.Period = "2w"
				cfg.Interval = "7m"
			},
			wantErr: []string{"2w", "7m"},
		},
		{
			name: "interval not valid for period",
			modify: func(cfg *Config) {
				cfg.Period = "10y"
				cfg.Interval = "5m"
			},
			wantErr: []string{"5m"},
		},
		{
			name: "negative cache ttl",
			modify: func(cfg *Config) {
				cfg.CacheTTLMinutes = -1
			},
			wantErr: []string{"cache ttl cannot be negative"},
		},
		{
			name: "watch without refresh interval",
			modify: func(cfg *Config) {
				cfg.Watch = true
				cfg.RefreshMinutes = 0
			},
			wantErr: []string{"refresh interval must be positive when watching"},
		},
		{
			name: "multiple errors",
			modify: func(cfg *Config) {
				cfg.Tickers = nil
				cfg.FMPAPIKey = ""
			},
			wantErr: []string{
				"no tickers or holdings provided for quant service",
				"fmp api key cannot be an empty string",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("expected error(s) %v, got none", tt.wantErr)
				return
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to contain %q, got %v", want, err)
				}
			}
		})
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Holdings = "aapl:10,msft"
	cfg.Interval = "1wk"
	cfg.Watch = true
	cfg.Overview = true

	svcCfg, err := cfg.serviceConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if svcCfg.Period != shared.OneYearPeriod {
		t.Errorf("Period: got %v, want %v", svcCfg.Period, shared.OneYearPeriod)
	}
	if svcCfg.Interval != shared.OneWeek {
		t.Errorf("Interval: got %v, want %v", svcCfg.Interval, shared.OneWeek)
	}
	if diff := cmp.Diff(map[string]float64{"AAPL": 10, "MSFT": 100}, map[string]float64(svcCfg.Holdings)); diff != "" {
		t.Errorf("Holdings mismatch (-want +got):\n%s", diff)
	}
	if svcCfg.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL: got %v, want %v", svcCfg.CacheTTL, 15*time.Minute)
	}
	if svcCfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval: got %v, want %v", svcCfg.RefreshInterval, 5*time.Minute)
	}
	if !svcCfg.Watch || !svcCfg.Overview {
		t.Errorf("expected watch and overview to be carried over")
	}
	if err := svcCfg.Validate(); err != nil {
		t.Errorf("expected a valid service config, got %v", err)
	}

	cfg.Period = "bogus"
	_, err = cfg.serviceConfig()
	if err == nil {
		t.Errorf("expected an unknown period error")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" AAPL, ,MSFT,,XOM ")
	if diff := cmp.Diff([]string{"AAPL", "MSFT", "XOM"}, got); diff != "" {
		t.Errorf("splitList mismatch (-want +got):\n%s", diff)
	}

	if got := splitList(""); len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name: "all from env",
			env: map[string]string{
				"tickers":   "AAPL,MSFT",
				"fmpapikey": "apikey",
				"period":    "6mo",
				"interval":  "1wk",
				"cachettl":  "30",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Tickers:         []string{"AAPL", "MSFT"},
				FMPAPIKey:       "apikey",
				Period:          "6mo",
				Interval:        "1wk",
				Benchmark:       "^GSPC",
				CacheTTLMinutes: 30,
				RefreshMinutes:  defaultRefreshMinutes,
			},
		},
		{
			name: "all from flags",
			env:  map[string]string{},
			args: []string{"cmd", "-tickers=AAPL,XOM", "-holdings=AAPL:10", "-datafilepath=/tmp/historic.json",
				"-benchmark=SPY", "-watch=true", "-refresh=1"},
			expectErr: false,
			expectCfg: Config{
				Tickers:         []string{"AAPL", "XOM"},
				Holdings:        "AAPL:10",
				DataFilepath:    "/tmp/historic.json",
				Period:          defaultPeriod,
				Interval:        defaultInterval,
				Benchmark:       "SPY",
				CacheTTLMinutes: defaultCacheTTLMinutes,
				RefreshMinutes:  1,
				Watch:           true,
			},
		},
		{
			name:        "missing tickers and data sources",
			env:         map[string]string{},
			args:        []string{"cmd"},
			expectErr:   true,
			expectInErr: []string{"no tickers or holdings provided for quant service", "fmp api key cannot be an empty string"},
		},
		{
			name: "invalid window from flags",
			env: map[string]string{
				"tickers":   "AAPL",
				"fmpapikey": "apikey",
			},
			args:        []string{"cmd", "-period=1d", "-interval=1mo"},
			expectErr:   true,
			expectInErr: []string{"1mo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Set environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if diff := cmp.Diff(tt.expectCfg, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
