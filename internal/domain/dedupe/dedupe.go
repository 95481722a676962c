// Package dedupe projects observations onto their identity key and tracks
// which keys were already seen.
package dedupe

import (
	"strconv"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Key is the identity of an observation over (date, category, schema measures).
// Two missing values compare equal; measures outside schema are ignored.
func Key(o model.Observation, schema model.Schema) string {
	var b strings.Builder
	b.WriteString(o.DateString())
	b.WriteByte(0)
	b.WriteString(o.Category)
	for _, m := range schema.Measures() {
		b.WriteByte(0)
		if v := o.Get(m); v.Valid {
			b.WriteByte('v')
			b.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
		}
	}
	return b.String()
}

// Unique keeps the first occurrence of every key in b and reports how many
// observations were dropped.
func Unique(b model.Batch) (model.Batch, int) {
	seen := make(map[string]struct{}, b.Len())
	out := model.Batch{Schema: b.Schema, Observations: make([]model.Observation, 0, b.Len())}
	for _, o := range b.Observations {
		k := Key(o, b.Schema)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out.Observations = append(out.Observations, o)
	}
	return out, b.Len() - out.Len()
}
