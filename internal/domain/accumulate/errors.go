package accumulate

import "errors"

// Sentinel kinds for accumulation errors.
var (
	ErrStorage    = errors.New("storage failure")
	ErrInvalidKey = errors.New("invalid subject key")
)
