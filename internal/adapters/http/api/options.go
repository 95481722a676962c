package api

type options struct {
	maxUploadBytes int64
}

func newOptions(opts ...Option) options {
	o := options{maxUploadBytes: 32 << 20}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures NewServer.
type Option func(*options)

// WithMaxUploadMB caps the body of POST /ingest.
func WithMaxUploadMB(mb int) Option {
	return func(o *options) {
		if mb > 0 {
			o.maxUploadBytes = int64(mb) << 20
		}
	}
}
