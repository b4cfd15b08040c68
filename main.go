package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dnldd/quant/service"
	"github.com/rs/zerolog/log"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

// logMarket writes a short digest of a market report.
func logMarket(name string, m *service.MarketReport) {
	if m == nil {
		return
	}

	log.Info().Msgf("%s %s: %d tickers, %d news articles", name, m.ID, len(m.Tickers), len(m.News))
	for _, summary := range m.Summaries {
		s := summary.Rounded()
		log.Info().Msgf("  %-9s price %10.2f  return %7.2f%%", s.Ticker, s.CurrentPrice, s.ReturnPct)
	}
	for _, sector := range m.Sectors {
		log.Info().Msgf("  sector %s: %d", sector.Sector, sector.Count)
	}
}

// logReports writes a short digest of the produced reports.
func logReports(reports *service.Reports) {
	if reports.Portfolio != nil {
		p := reports.Portfolio
		log.Info().Msgf("portfolio %s: %d holdings, total value %.2f", p.ID, len(p.Rows), p.TotalValue)
		for _, row := range p.Rows {
			log.Info().Msgf("  %-6s %8.2f shares  value %10.2f  weight %6.2f%%  return %7.2f%%  sector %s",
				row.Ticker, row.Shares, row.Value, row.WeightPct, row.ReturnPct, row.Sector)
		}
		if n := len(p.Cumulative); n > 0 {
			last := p.Cumulative[n-1]
			log.Info().Msgf("  cumulative return %.2f%% as of %s", last.ReturnPct, last.Date.Format("2006-01-02"))
		}
	}

	logMarket("market", reports.Market)
	logMarket("indices", reports.Indices)
	logMarket("sectors", reports.Sectors)

	for _, report := range reports.Tickers {
		if report.Summary == nil {
			log.Info().Msgf("%s: no data", report.Ticker)
			continue
		}

		s := report.Summary.Rounded()
		log.Info().Msgf("%s: price %.2f  change %.2f%%  sharpe %.2f  max drawdown %.2f%%",
			report.Ticker, s.CurrentPrice, report.HeadlineChange, s.Sharpe, s.MaxDrawdownPct)
		if report.ProfileInfo != nil {
			log.Info().Msgf("  poc %.2f  value area %.2f - %.2f",
				report.ProfileInfo.POC, report.ProfileInfo.ValueAreaLow, report.ProfileInfo.ValueAreaHigh)
		}
		if len(report.Snapbacks) > 0 {
			log.Info().Msgf("  %d vwap snapbacks", len(report.Snapbacks))
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	svcCfg, err := cfg.serviceConfig()
	if err != nil {
		log.Printf("creating service config: %v", err)
		return
	}

	svc, err := service.New(svcCfg)
	if err != nil {
		log.Printf("creating quant service: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleTermination(ctx, cancel)

	reports, err := svc.Run(ctx)
	if reports != nil {
		logReports(reports)
	}
	if err != nil {
		log.Printf("running quant service: %v", err)
	}
}
