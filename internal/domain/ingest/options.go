package ingest

import (
	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/decode"
	"github.com/okian/pitchtrack/internal/domain/layout"
	"github.com/okian/pitchtrack/internal/domain/normalize"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

func WithDecode(opts ...decode.Option) Option {
	return func(p *Pipeline) { p.decodeOpts = append(p.decodeOpts, opts...) }
}

func WithLayout(opts ...layout.Option) Option {
	return func(p *Pipeline) { p.layoutOpts = append(p.layoutOpts, opts...) }
}

func WithColumns(opts ...columns.Option) Option {
	return func(p *Pipeline) { p.columnOpts = append(p.columnOpts, opts...) }
}

func WithNormalize(opts ...normalize.Option) Option {
	return func(p *Pipeline) { p.normalizeOpts = append(p.normalizeOpts, opts...) }
}
