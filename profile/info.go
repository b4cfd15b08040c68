package profile

import (
	"sort"
)

const (
	// ValueAreaFraction is the share of total volume the value area captures.
	ValueAreaFraction = 0.7
	// HighVolumeNodeCount is the number of high volume nodes reported.
	HighVolumeNodeCount = 5
)

// Info represents the market structure derived from a volume profile.
type Info struct {
	POC             float64
	ValueAreaLow    float64
	ValueAreaHigh   float64
	HighVolumeNodes []float64
	TotalVolume     float64
	ValueAreaVolume float64
}

// Analyze derives the point of control, value area and high volume nodes of the
// provided profile. It returns false for an empty profile.
//
// The value area grows outward from the point of control one bin at a time
// towards the side with the larger adjacent volume, preferring the upper side on
// ties, until it holds ValueAreaFraction of the total volume or both sides are
// exhausted.
func Analyze(p Profile) (Info, bool) {
	if p.IsEmpty() {
		return Info{}, false
	}

	bins := make([]Bin, len(p.Bins))
	copy(bins, p.Bins)
	sort.SliceStable(bins, func(i, j int) bool {
		return bins[i].AvgPrice < bins[j].AvgPrice
	})

	poc := 0
	var total float64
	for idx := range bins {
		total += bins[idx].TotalVolume
		if bins[idx].TotalVolume > bins[poc].TotalVolume {
			poc = idx
		}
	}

	target := total * ValueAreaFraction
	cumulative := bins[poc].TotalVolume
	above, below := poc+1, poc-1
	for cumulative < target {
		var aboveVol, belowVol float64
		if above < len(bins) {
			aboveVol = bins[above].TotalVolume
		}
		if below >= 0 {
			belowVol = bins[below].TotalVolume
		}

		if above < len(bins) && aboveVol >= belowVol {
			cumulative += aboveVol
			above++
		} else if below >= 0 {
			cumulative += belowVol
			below--
		} else {
			break
		}
	}

	info := Info{
		POC:             bins[poc].AvgPrice,
		ValueAreaLow:    bins[below+1].AvgPrice,
		ValueAreaHigh:   bins[above-1].AvgPrice,
		TotalVolume:     total,
		ValueAreaVolume: cumulative,
	}

	order := make([]int, len(bins))
	for idx := range order {
		order[idx] = idx
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bins[order[i]].TotalVolume > bins[order[j]].TotalVolume
	})

	nodes := min(HighVolumeNodeCount, len(order))
	info.HighVolumeNodes = make([]float64, nodes)
	for idx := range nodes {
		info.HighVolumeNodes[idx] = bins[order[idx]].AvgPrice
	}

	return info, true
}
