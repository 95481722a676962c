package render

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrNoData = errors.New("nothing to render")
	ErrRender = errors.New("render failed")
)
