package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
)

// parseFilter overlays the query parameters exclude, from, to, session,
// break_limit and min_count on def. An empty exclude clears the exclusions.
func parseFilter(r *http.Request, def aggregate.Filter) (aggregate.Filter, error) {
	q := r.URL.Query()
	f := def
	if q.Has("exclude") {
		f.Exclude = nil
		for _, c := range strings.Split(q.Get("exclude"), ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Exclude = append(f.Exclude, c)
			}
		}
	}
	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To, "session": &f.Session} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return f, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, name)
		}
		*dst = t
	}
	if v := q.Get("break_limit"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("%w: break_limit must be a number", ErrBadRequest)
		}
		f.BreakLimit = n
	}
	if v := q.Get("min_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: min_count must be a non-negative integer", ErrBadRequest)
		}
		f.MinCount = n
	}
	return f, nil
}

// measureParam reads a measure name, falling back to def when absent.
func measureParam(r *http.Request, name string, def model.Measure) (model.Measure, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	m, ok := model.ParseMeasure(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s=%q", aggregate.ErrUnknownMeasure, name, v)
	}
	return m, nil
}
