package shared

import "errors"

var (
	// ErrEmptySeries is returned when a ticker has no bar data.
	ErrEmptySeries = errors.New("empty series")
	// ErrUnorderedSeries is returned when bar timestamps are not strictly ascending.
	ErrUnorderedSeries = errors.New("series timestamps are not strictly ascending")
	// ErrNegativeVolume is returned when a bar carries a negative volume.
	ErrNegativeVolume = errors.New("negative bar volume")
	// ErrUnknownInterval is returned for unrecognised sampling intervals.
	ErrUnknownInterval = errors.New("unknown interval")
	// ErrUnknownPeriod is returned for unrecognised look-back periods.
	ErrUnknownPeriod = errors.New("unknown period")
	// ErrInvalidIntervalForPeriod is returned when an interval cannot be requested for a period.
	ErrInvalidIntervalForPeriod = errors.New("interval not available for period")
)
