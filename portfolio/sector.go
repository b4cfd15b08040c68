package portfolio

import (
	"sort"
)

// SectorCount represents the number of tickers classified under a sector.
type SectorCount struct {
	Sector string
	Count  int
}

// SectorBreakdown counts the provided tickers per sector, ordered by count and
// then by name. Tickers without a sector are counted under MissingSector.
func SectorBreakdown(tickers []string, sectors map[string]string) []SectorCount {
	counts := make(map[string]int)
	for _, ticker := range tickers {
		sector := sectors[ticker]
		if sector == "" {
			sector = MissingSector
		}

		counts[sector]++
	}

	breakdown := make([]SectorCount, 0, len(counts))
	for sector, count := range counts {
		breakdown = append(breakdown, SectorCount{Sector: sector, Count: count})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}

		return breakdown[i].Sector < breakdown[j].Sector
	})

	return breakdown
}
