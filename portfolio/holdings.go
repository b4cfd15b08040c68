package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultShares is the share count assigned to tickers added without an explicit holding.
const DefaultShares = 100.0

// Holdings maps tickers to their share counts.
type Holdings map[string]float64

// DefaultHoldings returns holdings of DefaultShares for each provided ticker.
func DefaultHoldings(tickers []string) Holdings {
	h := make(Holdings, len(tickers))
	for _, ticker := range tickers {
		h[ticker] = DefaultShares
	}

	return h
}

// ParseHoldings parses holdings of the form "AAPL:10,MSFT:5". A ticker without
// a share count gets DefaultShares.
func ParseHoldings(s string) (Holdings, error) {
	h := make(Holdings)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		ticker, count, found := strings.Cut(entry, ":")
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			return nil, fmt.Errorf("holding %q has no ticker", entry)
		}

		if !found {
			h[ticker] = DefaultShares
			continue
		}

		shares, err := strconv.ParseFloat(strings.TrimSpace(count), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing shares of %s: %w", ticker, err)
		}
		if shares < 0 {
			return nil, fmt.Errorf("holding %s has negative shares %v", ticker, shares)
		}

		h[ticker] = shares
	}

	return h, nil
}

// Tickers returns the held tickers in alphabetical order.
func (h Holdings) Tickers() []string {
	tickers := make([]string, 0, len(h))
	for ticker := range h {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return tickers
}

// Validate asserts the holdings are sane.
func (h Holdings) Validate() error {
	var errs error
	for ticker, shares := range h {
		if ticker == "" {
			errs = errors.Join(errs, errors.New("holding with no ticker"))
		}
		if shares < 0 {
			errs = errors.Join(errs, fmt.Errorf("holding %s has negative shares %v", ticker, shares))
		}
	}

	return errs
}
