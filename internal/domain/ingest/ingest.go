// Package ingest composes decoding, layout reading, column resolution and
// normalization into a single parse of one uploaded file.
package ingest

import (
	"fmt"

	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/decode"
	"github.com/okian/pitchtrack/internal/domain/layout"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/normalize"
	"github.com/okian/pitchtrack/internal/domain/subject"
)

// Parsed is the outcome of parsing one file.
type Parsed struct {
	File     string
	Subject  subject.Identity
	Batch    model.Batch
	Encoding string
	Lossy    bool
	Headers  []string
	Ignored  []string // headers that lost to a higher-priority alias
	Stats    normalize.Stats
}

// Key returns the subject storage key.
func (p Parsed) Key() string { return p.Subject.Key() }

// Pipeline turns raw bytes into a normalized batch.
type Pipeline struct {
	decoder    *decode.Decoder
	reader     *layout.Reader
	resolver   *columns.Resolver
	normalizer *normalize.Normalizer

	decodeOpts    []decode.Option
	layoutOpts    []layout.Option
	columnOpts    []columns.Option
	normalizeOpts []normalize.Option
}

// New builds a Pipeline; stage options are passed through to each stage.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	p.decoder = decode.New(p.decodeOpts...)
	p.reader = layout.NewReader(p.layoutOpts...)
	p.resolver = columns.NewResolver(p.columnOpts...)
	p.normalizer = normalize.New(p.normalizeOpts...)
	return p
}

// Parse runs every stage over raw. Errors are file-scoped and match
// subject.ErrInvalidPrefix, layout.ErrLayout or columns.ErrSchema.
func (p *Pipeline) Parse(raw model.RawFile) (Parsed, error) {
	out := Parsed{File: raw.Name}

	dec := p.decoder.Decode(raw.Data)
	out.Encoding, out.Lossy = dec.Encoding, dec.Lossy

	out.Subject = subject.New(raw.Name, p.reader.ExtractSubjectName(dec.Text))
	if err := out.Subject.Validate(); err != nil {
		return out, fmt.Errorf("%s: %w", raw.Name, err)
	}

	tbl, err := p.reader.ParseTable(dec.Text)
	if err != nil {
		return out, fmt.Errorf("%s: %w", raw.Name, err)
	}
	out.Headers = tbl.Headers()

	res, err := p.resolver.Check(out.Headers)
	if err != nil {
		return out, fmt.Errorf("%s: %w", raw.Name, err)
	}
	out.Ignored = res.Dropped

	out.Batch, out.Stats = p.normalizer.Normalize(tbl, res)
	return out, nil
}

// Aliases returns the alias table the pipeline resolves with.
func (p *Pipeline) Aliases() columns.AliasTable { return p.resolver.Table() }
