package upload

import "errors"

var (
	// ErrDisabled is returned by the no-op sink.
	ErrDisabled = errors.New("upload: no uploader configured")
	// ErrUnknownSink is returned by Open for an unsupported sink name.
	ErrUnknownSink = errors.New("upload: unknown sink")
	// ErrConfig reports a sink that is missing required settings.
	ErrConfig = errors.New("upload: invalid configuration")
	// ErrUpload wraps failures reported by the remote side.
	ErrUpload = errors.New("upload: transfer failed")
)
