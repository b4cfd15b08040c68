package fetch

import (
	"fmt"
	"math"
	"time"

	"github.com/dnldd/quant/shared"
)

// periodKey returns the calendar bucket of the provided time for a coarse interval.
func periodKey(t time.Time, interval shared.Interval) (int, int, error) {
	switch interval {
	case shared.OneWeek:
		y, w := t.ISOWeek()
		return y, w, nil
	case shared.OneMonth:
		return t.Year(), int(t.Month()), nil
	case shared.ThreeMonth:
		return t.Year(), (int(t.Month()) - 1) / 3, nil
	default:
		return 0, 0, fmt.Errorf("%w: cannot aggregate to %s", ErrUnsupportedInterval, interval)
	}
}

// aggregateBars folds ascending daily bars into weekly, monthly or quarterly
// bars. Each aggregate opens at its first bar, closes at its last and is dated
// at its first bar.
func aggregateBars(bars []shared.Bar, interval shared.Interval, loc *time.Location) ([]shared.Bar, error) {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]shared.Bar, 0, len(bars)/4+1)
	var curA, curB int
	for idx := range bars {
		bar := bars[idx]
		a, b, err := periodKey(bar.Date.In(loc), interval)
		if err != nil {
			return nil, err
		}

		if len(out) == 0 || a != curA || b != curB {
			out = append(out, bar)
			curA, curB = a, b
			continue
		}

		agg := &out[len(out)-1]
		agg.High = math.Max(agg.High, bar.High)
		agg.Low = math.Min(agg.Low, bar.Low)
		agg.Close = bar.Close
		agg.Volume += bar.Volume
	}

	return out, nil
}
