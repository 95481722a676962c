package aggregate

import "github.com/okian/pitchtrack/internal/domain/model"

// IndicatorRow expresses a category against the fastball (= 100).
type IndicatorRow struct {
	Category           string   `json:"category"`
	Fastball           bool     `json:"fastball"`
	MeanVelocity       *float64 `json:"mean_velocity"`
	VelocityPct        *float64 `json:"velocity_pct"`
	MeanSpinEfficiency *float64 `json:"mean_spin_efficiency"`
}

// Indicator lists fastballs first, then the other categories, each in
// category order. VelocityPct is nil when the session has no fastball.
func (c *Calculator) Indicator(b model.Batch) []IndicatorRow {
	groups := groupByCategory(b)
	fb := c.fastballVelocity(groups)
	var fast, rest []IndicatorRow
	for _, g := range groups {
		row := IndicatorRow{Category: g.category, Fastball: c.IsFastball(g.category)}
		if m, ok := g.means[model.Velocity]; ok {
			v := m.value()
			row.MeanVelocity = round(v, 2).Ptr()
			row.VelocityPct = pctOf(v, fb).Ptr()
		}
		if m, ok := g.means[model.SpinEfficiency]; ok {
			row.MeanSpinEfficiency = round(m.value(), 2).Ptr()
		}
		if row.Fastball {
			fast = append(fast, row)
		} else {
			rest = append(rest, row)
		}
	}
	return append(fast, rest...)
}
