package indicator

import (
	"math"
	"time"

	"github.com/dnldd/quant/shared"
	"gonum.org/v1/gonum/stat"
)

// VWAPRow represents the intraday volume weighted average price metrics of a bar.
type VWAPRow struct {
	Date  time.Time
	Day   shared.DayKey
	Close float64

	TypicalPrice       float64
	CumulativeVolume   float64
	CumulativeTPVolume float64
	VWAP               float64
	// Deviation is the close minus the vwap.
	Deviation float64
	// DeviationStd is the expanding standard deviation of the day's deviations.
	DeviationStd float64
	ZScore       float64
}

// vwapGenerator cumulatively tracks the vwap of a single trading day.
type vwapGenerator struct {
	typicalPriceVolume float64
	volume             float64
	deviations         []float64
}

// update cumulatively updates the generator with the provided bar.
func (v *vwapGenerator) update(bar *shared.Bar, day shared.DayKey) VWAPRow {
	typicalPrice := bar.TypicalPrice()
	v.typicalPriceVolume += typicalPrice * bar.Volume
	v.volume += bar.Volume

	row := VWAPRow{
		Date:               bar.Date,
		Day:                day,
		Close:              bar.Close,
		TypicalPrice:       typicalPrice,
		CumulativeVolume:   v.volume,
		CumulativeTPVolume: v.typicalPriceVolume,
		DeviationStd:       math.NaN(),
	}

	// A day with no traded volume so far has an undefined vwap.
	row.VWAP = v.typicalPriceVolume / v.volume
	row.Deviation = bar.Close - row.VWAP

	if !math.IsNaN(row.Deviation) {
		v.deviations = append(v.deviations, row.Deviation)
	}
	if len(v.deviations) > 1 {
		row.DeviationStd = stat.StdDev(v.deviations, nil)
	}

	return row
}

// reset clears the generator at a day boundary.
func (v *vwapGenerator) reset() {
	v.typicalPriceVolume = 0
	v.volume = 0
	v.deviations = v.deviations[:0]
}

// finalizeDay back-fills undefined deviation spreads from the next defined
// value of the same day and derives the z-scores of the day's rows.
func finalizeDay(rows []VWAPRow) {
	next := math.NaN()
	for idx := len(rows) - 1; idx >= 0; idx-- {
		if math.IsNaN(rows[idx].DeviationStd) {
			rows[idx].DeviationStd = next
		} else {
			next = rows[idx].DeviationStd
		}

		rows[idx].ZScore = rows[idx].Deviation / rows[idx].DeviationStd
	}
}

// ComputeVWAP derives the intraday vwap rows of the provided series. The vwap
// resets at each calendar day in loc (new york when nil). The result has one row
// per bar; an empty series yields no rows. Single-bar days, zero-volume days and
// days with no deviation spread yield NaN or infinite z-scores.
func ComputeVWAP(series shared.Series, loc *time.Location) []VWAPRow {
	if series.IsEmpty() {
		return nil
	}

	if loc == nil {
		loc = shared.ExchangeLocation()
	}

	rows := make([]VWAPRow, 0, series.Len())
	gen := &vwapGenerator{}
	dayStart := 0
	for idx := range series.Bars {
		bar := &series.Bars[idx]
		day := shared.NewDayKey(bar.Date, loc)

		if idx > 0 && day != rows[idx-1].Day {
			finalizeDay(rows[dayStart:idx])
			gen.reset()
			dayStart = idx
		}

		rows = append(rows, gen.update(bar, day))
	}

	finalizeDay(rows[dayStart:])

	return rows
}
