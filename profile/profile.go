package profile

import (
	"math"
	"sort"

	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultBins is the default number of equal-width price bins.
	DefaultBins = 50
	// edgeAdjustment is the fraction of the price range the lowest bin edge is
	// pushed down by so the minimum close lands inside the first bin.
	edgeAdjustment = 0.001
)

// Bin represents a right-closed price interval of a volume profile.
type Bin struct {
	Low         float64
	High        float64
	AvgPrice    float64
	TotalVolume float64
	Count       int
}

// Contains checks whether the provided price falls within the bin.
func (b *Bin) Contains(price float64) bool {
	return price > b.Low && price <= b.High
}

// Profile represents the distribution of traded volume over close prices.
type Profile struct {
	Ticker string
	Bins   []Bin
}

// IsEmpty checks whether the profile has no populated bins.
func (p *Profile) IsEmpty() bool {
	return len(p.Bins) == 0
}

// TotalVolume returns the volume across all bins.
func (p *Profile) TotalVolume() float64 {
	var sum float64
	for idx := range p.Bins {
		sum += p.Bins[idx].TotalVolume
	}

	return sum
}

// binEdges returns the numBins+1 edges partitioning [low, high].
func binEdges(low float64, high float64, numBins int) []float64 {
	if low == high {
		adj := edgeAdjustment
		if low != 0 {
			adj = edgeAdjustment * math.Abs(low)
		}

		low -= adj
		high += adj

		return floats.Span(make([]float64, numBins+1), low, high)
	}

	edges := floats.Span(make([]float64, numBins+1), low, high)
	edges[0] -= (high - low) * edgeAdjustment

	return edges
}

// Build partitions the close price range of the series into numBins equal-width
// bins and aggregates the volume and mean close of each. Bins without
// observations are dropped, the rest are ordered by price. A non-positive bin
// count falls back to DefaultBins.
func Build(series shared.Series, numBins int) Profile {
	profile := Profile{Ticker: series.Ticker}
	if numBins <= 0 {
		numBins = DefaultBins
	}

	low, high := math.Inf(1), math.Inf(-1)
	for idx := range series.Bars {
		price := series.Bars[idx].Close
		if math.IsNaN(price) {
			continue
		}

		low = math.Min(low, price)
		high = math.Max(high, price)
	}

	if math.IsInf(low, 1) {
		return profile
	}

	edges := binEdges(low, high, numBins)
	bins := make([]Bin, numBins)
	sums := make([]float64, numBins)
	for idx := range bins {
		bins[idx].Low = edges[idx]
		bins[idx].High = edges[idx+1]
	}

	for idx := range series.Bars {
		bar := &series.Bars[idx]
		if math.IsNaN(bar.Close) {
			continue
		}

		pos := sort.SearchFloat64s(edges, bar.Close) - 1
		pos = max(0, min(pos, numBins-1))

		bins[pos].Count++
		bins[pos].TotalVolume += bar.Volume
		sums[pos] += bar.Close
	}

	profile.Bins = make([]Bin, 0, numBins)
	for idx := range bins {
		if bins[idx].Count == 0 {
			continue
		}

		bins[idx].AvgPrice = sums[idx] / float64(bins[idx].Count)
		profile.Bins = append(profile.Bins, bins[idx])
	}

	return profile
}
