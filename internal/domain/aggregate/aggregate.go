// Package aggregate groups normalized observations by category and time
// bucket to produce chart series and summary tables.
package aggregate

import (
	"math"
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Aggregator produces chart and table inputs from observations.
type Aggregator interface {
	Filter(b model.Batch, f Filter) model.Batch
	Summary(b model.Batch) []SummaryRow
	Trend(b model.Batch, m model.Measure, bucket Bucket) []TrendPoint
	Scatter(b model.Batch, x, y model.Measure) []ScatterSeries
	Indicator(b model.Batch) []IndicatorRow
	CompareFastballs(subjects map[string]model.Batch) []ComparePoint
	SessionDate(b model.Batch) time.Time
}

// DefaultFastballKeywords are matched case-insensitively against categories.
var DefaultFastballKeywords = []string{"fast", "4-seam", "4 seam", "four", "straight", "ストレ", "直球"}

// Calculator is the in-memory Aggregator.
type Calculator struct {
	fastball []string
	now      func() time.Time
}

var _ Aggregator = (*Calculator)(nil)

// New creates a Calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{fastball: DefaultFastballKeywords, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// mean accumulates a running average over present values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v model.Value) {
	if v.Valid {
		m.sum += v.Float
		m.n++
	}
}

func (m mean) value() model.Value {
	if m.n == 0 {
		return model.Missing()
	}
	return model.Some(m.sum / float64(m.n))
}

func maxOf(cur, v model.Value) model.Value {
	if !v.Valid {
		return cur
	}
	if !cur.Valid || v.Float > cur.Float {
		return v
	}
	return cur
}

func round(v model.Value, places int) model.Value {
	if !v.Valid {
		return v
	}
	p := math.Pow(10, float64(places))
	return model.Some(math.Round(v.Float*p) / p)
}
