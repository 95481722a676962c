package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrUnknownBucket  = errors.New("unknown time bucket")
	ErrUnknownMeasure = errors.New("unknown measure")
)
