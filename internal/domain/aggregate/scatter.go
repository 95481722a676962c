package aggregate

import (
	"slices"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Point is one (x, y) pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterSeries holds the pairs of one category.
type ScatterSeries struct {
	Category string  `json:"category"`
	Points   []Point `json:"points"`
}

// Scatter pairs measures x and y per category, keeping only observations
// where both are present. Series are ordered by category.
func (c *Calculator) Scatter(b model.Batch, x, y model.Measure) []ScatterSeries {
	idx := make(map[string]int)
	var out []ScatterSeries
	for _, o := range b.Observations {
		xv, yv := o.Get(x), o.Get(y)
		if !xv.Valid || !yv.Valid {
			continue
		}
		i, ok := idx[o.Category]
		if !ok {
			i = len(out)
			idx[o.Category] = i
			out = append(out, ScatterSeries{Category: o.Category})
		}
		out[i].Points = append(out[i].Points, Point{X: xv.Float, Y: yv.Float})
	}
	slices.SortFunc(out, func(a, b ScatterSeries) int { return strings.Compare(a.Category, b.Category) })
	return out
}
