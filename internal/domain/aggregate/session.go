package aggregate

import (
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// SessionDate returns the most frequent observation date. Ties go to the
// earliest date; an empty batch yields today.
func (c *Calculator) SessionDate(b model.Batch) time.Time {
	counts := make(map[time.Time]int)
	var best time.Time
	for _, o := range b.Observations {
		d := model.Date(o.Date)
		counts[d]++
		n := counts[d]
		switch {
		case best.IsZero():
			best = d
		case n > counts[best]:
			best = d
		case n == counts[best] && d.Before(best):
			best = d
		}
	}
	if best.IsZero() {
		return model.Date(c.now())
	}
	return best
}
