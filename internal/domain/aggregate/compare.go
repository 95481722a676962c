package aggregate

import (
	"encoding/json"
	"slices"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// ComparedMeasures are averaged per subject in CompareFastballs.
var ComparedMeasures = []model.Measure{model.Velocity, model.TotalSpin, model.HorizontalBreak, model.VerticalBreak}

// ComparePoint is one subject's fastball averages.
type ComparePoint struct {
	Subject string
	Count   int
	Means   map[model.Measure]model.Value
}

// MarshalJSON flattens the point; missing means are null.
func (p ComparePoint) MarshalJSON() ([]byte, error) {
	out := map[string]any{"subject": p.Subject, "count": p.Count}
	for _, m := range ComparedMeasures {
		out[m.String()] = p.Means[m].Ptr()
	}
	return json.Marshal(out)
}

// CompareFastballs returns one point per subject that threw at least one
// fastball, ordered by subject key.
func (c *Calculator) CompareFastballs(subjects map[string]model.Batch) []ComparePoint {
	keys := make([]string, 0, len(subjects))
	for k := range subjects {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []ComparePoint
	for _, k := range keys {
		accs := make(map[model.Measure]*mean, len(ComparedMeasures))
		for _, m := range ComparedMeasures {
			accs[m] = &mean{}
		}
		n := 0
		for _, o := range subjects[k].Observations {
			if !c.IsFastball(o.Category) {
				continue
			}
			n++
			for _, m := range ComparedMeasures {
				accs[m].add(o.Get(m))
			}
		}
		if n == 0 {
			continue
		}
		p := ComparePoint{Subject: k, Count: n, Means: make(map[model.Measure]model.Value, len(accs))}
		for m, a := range accs {
			p.Means[m] = a.value()
		}
		out = append(out, p)
	}
	return out
}
