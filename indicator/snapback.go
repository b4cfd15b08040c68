package indicator

import (
	"math"
	"time"
)

const (
	// SnapbackThreshold is the absolute z-score beyond which price is
	// considered extended from vwap.
	SnapbackThreshold = 2.0
)

// SnapbackState represents the intraday extension state of price relative to vwap.
type SnapbackState int

const (
	Neutral SnapbackState = iota
	Extended
)

// String stringifies the provided snapback state.
func (s SnapbackState) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Extended:
		return "extended"
	default:
		return "unknown"
	}
}

// SnapbackEvent represents price crossing back through vwap after being
// extended from it earlier in the same day.
type SnapbackEvent struct {
	// Index is the position of the event in the vwap rows.
	Index int
	Date  time.Time
	Price float64
	// MaxZDistance is the signed z-score extreme of the day up to the event.
	MaxZDistance float64
}

// DetectSnapbacks scans the provided vwap rows for snapback events using the
// default extension threshold.
func DetectSnapbacks(rows []VWAPRow) []SnapbackEvent {
	return DetectSnapbacksWith(rows, SnapbackThreshold)
}

// DetectSnapbacksWith scans the provided vwap rows for snapback events. Price is
// extended once |z| exceeds threshold and an event fires on the first same-day
// z-score sign change while extended, returning the state to neutral. The state
// resets to neutral at each new day.
func DetectSnapbacksWith(rows []VWAPRow, threshold float64) []SnapbackEvent {
	var events []SnapbackEvent

	state := Neutral
	maxZ, minZ := math.NaN(), math.NaN()
	for idx := range rows {
		row := &rows[idx]
		sameDay := idx > 0 && rows[idx-1].Day == row.Day

		if !sameDay {
			state = Neutral
			maxZ, minZ = math.NaN(), math.NaN()
		}

		z := row.ZScore
		if !math.IsNaN(z) {
			if math.IsNaN(maxZ) || z > maxZ {
				maxZ = z
			}
			if math.IsNaN(minZ) || z < minZ {
				minZ = z
			}
		}

		if math.Abs(z) > threshold {
			state = Extended
		}

		crossed := sameDay && rows[idx-1].ZScore*z < 0
		if !crossed || state != Extended {
			continue
		}

		distance := minZ
		if math.Abs(maxZ) >= math.Abs(minZ) {
			distance = maxZ
		}

		events = append(events, SnapbackEvent{
			Index:        idx,
			Date:         row.Date,
			Price:        row.Close,
			MaxZDistance: distance,
		})

		state = Neutral
	}

	return events
}
