package aggregate

import (
	"math"
	"slices"
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Default filter settings.
const (
	DefaultBreakLimit = 70
	DefaultMinCount   = 1
)

// DefaultExclude lists the placeholder categories hidden by default.
var DefaultExclude = []string{"-", "Other"}

// Filter selects the observations shown on charts and tables. Zero From/To
// leave that side of the range open; BreakLimit <= 0 disables the cap.
type Filter struct {
	Exclude    []string
	From       time.Time
	To         time.Time
	Session    time.Time // when set, only this calendar date is kept
	BreakLimit float64
	MinCount   int
}

// DefaultFilter returns the dashboard defaults.
func DefaultFilter() Filter {
	return Filter{
		Exclude:    slices.Clone(DefaultExclude),
		BreakLimit: DefaultBreakLimit,
		MinCount:   DefaultMinCount,
	}
}

// Filter applies f to b. Missing break values pass the cap.
func (c *Calculator) Filter(b model.Batch, f Filter) model.Batch {
	from, to, session := dateOrZero(f.From), dateOrZero(f.To), dateOrZero(f.Session)
	out := model.Batch{Schema: b.Schema}
	for _, o := range b.Observations {
		if slices.Contains(f.Exclude, o.Category) {
			continue
		}
		if !from.IsZero() && o.Date.Before(from) {
			continue
		}
		if !to.IsZero() && o.Date.After(to) {
			continue
		}
		if !session.IsZero() && !o.Date.Equal(session) {
			continue
		}
		if f.BreakLimit > 0 && (overCap(o.Get(model.VerticalBreak), f.BreakLimit) || overCap(o.Get(model.HorizontalBreak), f.BreakLimit)) {
			continue
		}
		out.Observations = append(out.Observations, o)
	}

	if f.MinCount > 1 {
		counts := make(map[string]int)
		for _, o := range out.Observations {
			counts[o.Category]++
		}
		kept := out.Observations[:0]
		for _, o := range out.Observations {
			if counts[o.Category] >= f.MinCount {
				kept = append(kept, o)
			}
		}
		out.Observations = kept
	}
	return out
}

func overCap(v model.Value, limit float64) bool {
	return v.Valid && math.Abs(v.Float) > limit
}

func dateOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return model.Date(t)
}
