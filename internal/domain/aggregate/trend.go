package aggregate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Bucket is a trend time granularity.
type Bucket string

// Supported buckets.
const (
	Day   Bucket = "day"
	Week  Bucket = "week"
	Month Bucket = "month"
)

// ParseBucket accepts day, week or month; empty means day.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return Day, nil
	case Day, Week, Month:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBucket, s)
}

// Start returns the first day of the bucket containing t. Weeks start on Monday.
func (b Bucket) Start(t time.Time) time.Time {
	d := model.Date(t)
	switch b {
	case Week:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Month:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

// TrendPoint is the mean of one measure for a (bucket, category) pair.
type TrendPoint struct {
	Bucket   time.Time `json:"bucket"`
	Category string    `json:"category"`
	Mean     float64   `json:"mean"`
	Count    int       `json:"count"`
}

// Trend averages measure m per bucket and category. Observations without a
// value for m are skipped. Points are ordered by bucket, then category.
func (c *Calculator) Trend(b model.Batch, m model.Measure, bucket Bucket) []TrendPoint {
	type key struct {
		at  time.Time
		cat string
	}
	acc := make(map[key]*mean)
	for _, o := range b.Observations {
		v := o.Get(m)
		if !v.Valid {
			continue
		}
		k := key{at: bucket.Start(o.Date), cat: o.Category}
		if acc[k] == nil {
			acc[k] = &mean{}
		}
		acc[k].add(v)
	}
	out := make([]TrendPoint, 0, len(acc))
	for k, a := range acc {
		out = append(out, TrendPoint{Bucket: k.at, Category: k.cat, Mean: a.value().Float, Count: a.n})
	}
	slices.SortFunc(out, func(a, b TrendPoint) int {
		if c := a.Bucket.Compare(b.Bucket); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}
