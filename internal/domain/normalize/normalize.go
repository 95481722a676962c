// Package normalize coerces raw table cells into typed observations.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchtrack/internal/domain/columns"
	"github.com/okian/pitchtrack/internal/domain/layout"
	"github.com/okian/pitchtrack/internal/domain/model"
	"golang.org/x/text/width"
)

// DefaultSentinels are the cell values the device writes for "no reading".
var DefaultSentinels = []string{"-", "－"}

// DefaultDateLayouts are tried in order; the first that parses wins.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006年1月2日",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
}

// Stats describes one normalization run.
type Stats struct {
	Rows        int // data rows in the table
	Kept        int // observations produced
	DroppedDate int // rows dropped for an unparseable date
	Missing     int // measure cells that became missing
}

// Normalizer converts a parsed table plus a column resolution into a Batch.
type Normalizer struct {
	sentinels map[string]bool
	layouts   []string
}

// New creates a Normalizer with the default sentinels and date layouts.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{layouts: DefaultDateLayouts}
	n.setSentinels(DefaultSentinels)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) setSentinels(tokens []string) {
	n.sentinels = make(map[string]bool, len(tokens))
	for _, t := range tokens {
		n.sentinels[strings.TrimSpace(t)] = true
	}
}

// Normalize builds one observation per structurally valid row. Rows are only
// dropped when their date cannot be parsed; missing measures never drop a row.
func (n *Normalizer) Normalize(t *layout.Table, res columns.Resolution) (model.Batch, Stats) {
	var b model.Batch
	measures := make(map[model.Measure]int)
	for _, m := range model.Measures() {
		if i, ok := res.Index(m.String()); ok {
			measures[m] = i
			b.Schema[m] = true
		}
	}
	di, hasDate := res.Index(columns.FieldDate)
	ci, hasCategory := res.Index(columns.FieldCategory)

	st := Stats{Rows: t.Len()}
	b.Observations = make([]model.Observation, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if !hasDate {
			st.DroppedDate++
			continue
		}
		d, ok := n.ParseDate(t.Cell(i, di))
		if !ok {
			st.DroppedDate++
			continue
		}
		o := model.Observation{Date: d}
		if hasCategory {
			o.Category = strings.TrimSpace(t.Cell(i, ci))
		}
		for m, j := range measures {
			var v model.Value
			if m == model.Strike {
				v = n.ParseStrike(t.Cell(i, j))
			} else {
				v = n.ParseNumber(t.Cell(i, j))
			}
			if !v.Valid {
				st.Missing++
			}
			o.Set(m, v)
		}
		b.Observations = append(b.Observations, o)
	}
	st.Kept = len(b.Observations)
	return b, st
}

// ParseDate tries every layout in order and returns the calendar date.
func (n *Normalizer) ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(width.Narrow.String(raw))
	if s == "" || n.sentinels[s] {
		return time.Time{}, false
	}
	for _, l := range n.layouts {
		if t, err := time.Parse(l, s); err == nil {
			return model.Date(t), true
		}
	}
	return time.Time{}, false
}

// ParseNumber maps blanks, sentinels, unparseable text, NaN and Inf to missing.
func (n *Normalizer) ParseNumber(raw string) model.Value {
	s := strings.TrimSpace(raw)
	if s == "" || n.sentinels[s] {
		return model.Missing()
	}
	s = strings.TrimSpace(width.Narrow.String(s))
	if n.sentinels[s] {
		return model.Missing()
	}
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Missing()
	}
	return model.Some(f)
}

// ParseStrike maps Y/N style flags to 1/0; anything else is missing.
func (n *Normalizer) ParseStrike(raw string) model.Value {
	switch strings.ToLower(strings.TrimSpace(width.Narrow.String(raw))) {
	case "y", "yes", "true", "1":
		return model.Some(1)
	case "n", "no", "false", "0":
		return model.Some(0)
	}
	return model.Missing()
}
