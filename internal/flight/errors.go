package flight

import "errors"

// Sentinel errors for the per-log failure modes. None of these are fatal
// to a run: the caller logs a warning and skips the affected log.
var (
	// ErrSparseSampling reports a log whose dominant sample interval
	// exceeds the usable limit.
	ErrSparseSampling = errors.New("sample interval too sparse")

	// ErrNoData reports a requested time window that falls outside the
	// resampled grid.
	ErrNoData = errors.New("no data in requested window")

	// ErrTooShort reports a fix series with fewer than two samples.
	ErrTooShort = errors.New("fix series too short")
)
