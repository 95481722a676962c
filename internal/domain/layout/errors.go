package layout

import "errors"

// Sentinel kinds for layout errors.
var (
	ErrLayout = errors.New("unexpected file layout")
)
