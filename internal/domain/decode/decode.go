// Package decode turns uploaded bytes into text over an ordered list of encodings.
package decode

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FallbackName labels text produced by the lossy fallback.
const FallbackName = "utf-8(replace)"

const bom = "\ufeff"

// Candidate is one encoding tried by the Decoder.
type Candidate struct {
	Name     string
	Encoding encoding.Encoding
}

// DefaultCandidates lists UTF-8 first, then Shift_JIS (CP932 exports).
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "utf-8", Encoding: unicode.UTF8},
		{Name: "shift_jis", Encoding: japanese.ShiftJIS},
	}
}

// Result is decoded text plus the encoding that produced it.
type Result struct {
	Text     string
	Encoding string
	Lossy    bool
}

// Decoder decodes bytes with the first candidate that succeeds.
type Decoder struct {
	candidates []Candidate
}

// New creates a Decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{candidates: DefaultCandidates()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode never fails: when every candidate rejects the input, invalid
// sequences are replaced with U+FFFD.
func (d *Decoder) Decode(data []byte) Result {
	for _, c := range d.candidates {
		if text, ok := tryDecode(c.Encoding, data); ok {
			return Result{Text: strings.TrimPrefix(text, bom), Encoding: c.Name}
		}
	}
	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))
	return Result{Text: strings.TrimPrefix(text, bom), Encoding: FallbackName, Lossy: true}
}

// Candidates returns the configured candidate names in order.
func (d *Decoder) Candidates() []string {
	out := make([]string, len(d.candidates))
	for i, c := range d.candidates {
		out[i] = c.Name
	}
	return out
}

// tryDecode reports success only for a clean decode. x/text decoders
// substitute U+FFFD instead of failing, so a replacement rune in the output
// marks the candidate as wrong.
func tryDecode(enc encoding.Encoding, data []byte) (string, bool) {
	if enc == nil {
		return "", false
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
