package aggregate

import (
	"encoding/json"
	"slices"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// SummaryRow is the per-category table row.
type SummaryRow struct {
	Category     string
	Count        int
	Means        map[model.Measure]model.Value // one entry per schema measure
	MaxVelocity  model.Value
	MaxTotalSpin model.Value
	StrikeRate   model.Value // percent of pitches with a strike flag
	VelocityPct  model.Value // category mean velocity as percent of the fastball mean
}

// MarshalJSON flattens the row; missing values are null.
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"category":       r.Category,
		"count":          r.Count,
		"max_velocity":   r.MaxVelocity.Ptr(),
		"max_total_spin": r.MaxTotalSpin.Ptr(),
		"strike_rate":    r.StrikeRate.Ptr(),
		"velocity_pct":   r.VelocityPct.Ptr(),
	}
	for m, v := range r.Means {
		out["mean_"+m.String()] = v.Ptr()
	}
	return json.Marshal(out)
}

type group struct {
	count    int
	means    map[model.Measure]*mean
	maxVelo  model.Value
	maxSpin  model.Value
	category string
}

func groupByCategory(b model.Batch) []*group {
	idx := make(map[string]*group)
	var order []*group
	schema := b.Schema.Measures()
	for _, o := range b.Observations {
		g, ok := idx[o.Category]
		if !ok {
			g = &group{category: o.Category, means: make(map[model.Measure]*mean, len(schema))}
			for _, m := range schema {
				g.means[m] = &mean{}
			}
			idx[o.Category] = g
			order = append(order, g)
		}
		g.count++
		for _, m := range schema {
			g.means[m].add(o.Get(m))
		}
		g.maxVelo = maxOf(g.maxVelo, o.Get(model.Velocity))
		g.maxSpin = maxOf(g.maxSpin, o.Get(model.TotalSpin))
	}
	slices.SortFunc(order, func(a, b *group) int {
		switch {
		case a.category < b.category:
			return -1
		case a.category > b.category:
			return 1
		}
		return 0
	})
	return order
}

// fastballVelocity is the average of the per-category mean velocities of
// every fastball category.
func (c *Calculator) fastballVelocity(groups []*group) model.Value {
	var fb mean
	for _, g := range groups {
		if !c.IsFastball(g.category) {
			continue
		}
		if m, ok := g.means[model.Velocity]; ok {
			fb.add(m.value())
		}
	}
	return fb.value()
}

func pctOf(v, base model.Value) model.Value {
	if !v.Valid || !base.Valid || base.Float <= 0 {
		return model.Missing()
	}
	return round(model.Some(v.Float/base.Float*100), 1)
}

// Summary returns one row per category sorted by category.
func (c *Calculator) Summary(b model.Batch) []SummaryRow {
	groups := groupByCategory(b)
	fb := c.fastballVelocity(groups)
	rows := make([]SummaryRow, 0, len(groups))
	for _, g := range groups {
		r := SummaryRow{
			Category:     g.category,
			Count:        g.count,
			Means:        make(map[model.Measure]model.Value, len(g.means)),
			MaxVelocity:  g.maxVelo,
			MaxTotalSpin: g.maxSpin,
		}
		for m, acc := range g.means {
			r.Means[m] = acc.value()
		}
		if s, ok := g.means[model.Strike]; ok {
			if v := s.value(); v.Valid {
				r.StrikeRate = round(model.Some(v.Float*100), 1)
			}
		}
		if v, ok := r.Means[model.Velocity]; ok {
			r.VelocityPct = pctOf(v, fb)
		}
		rows = append(rows, r)
	}
	return rows
}
