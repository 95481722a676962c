package api

import (
	"net/http"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
)

// SubjectsHandler serves the JSON query endpoints.
type SubjectsHandler struct {
	deps QueryDependencies
}

// NewSubjectsHandler creates a new subjects handler.
func NewSubjectsHandler(deps QueryDependencies) *SubjectsHandler {
	return &SubjectsHandler{deps: deps}
}

type observationsResponse struct {
	Key          string              `json:"key"`
	Fields       []string            `json:"fields"`
	Count        int                 `json:"count"`
	Observations []model.Observation `json:"observations"`
}

// HandleList handles GET /subjects.
func (h *SubjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subs, err := h.deps.Subjects(r.Context())
	if err != nil {
		writeFailure(w, Wrap("subjects", err))
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// HandleObservations handles GET /subjects/{key}/observations.
func (h *SubjectsHandler) HandleObservations(w http.ResponseWriter, r *http.Request) {
	key, f, ok := h.request(w, r)
	if !ok {
		return
	}
	b, err := h.deps.Observations(r.Context(), key, f)
	if err != nil {
		writeFailure(w, Wrap("observations", err))
		return
	}
	obs := b.Observations
	if obs == nil {
		obs = []model.Observation{}
	}
	writeJSON(w, http.StatusOK, observationsResponse{Key: key, Fields: b.Schema.Names(), Count: len(obs), Observations: obs})
}

// HandleSummary handles GET /subjects/{key}/summary.
func (h *SubjectsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	key, f, ok := h.request(w, r)
	if !ok {
		return
	}
	rows, err := h.deps.Summary(r.Context(), key, f)
	if err != nil {
		writeFailure(w, Wrap("summary", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// HandleTrend handles GET /subjects/{key}/trend?measure=&bucket=.
func (h *SubjectsHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	key, f, ok := h.request(w, r)
	if !ok {
		return
	}
	m, err := measureParam(r, "measure", model.Velocity)
	if err != nil {
		writeFailure(w, Wrap("trend", err))
		return
	}
	bucket, err := aggregate.ParseBucket(r.URL.Query().Get("bucket"))
	if err != nil {
		writeFailure(w, Wrap("trend", err))
		return
	}
	pts, err := h.deps.Trend(r.Context(), key, f, m, bucket)
	if err != nil {
		writeFailure(w, Wrap("trend", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(pts))
}

// HandleScatter handles GET /subjects/{key}/scatter?x=&y=.
func (h *SubjectsHandler) HandleScatter(w http.ResponseWriter, r *http.Request) {
	key, f, ok := h.request(w, r)
	if !ok {
		return
	}
	x, err := measureParam(r, "x", model.HorizontalBreak)
	if err != nil {
		writeFailure(w, Wrap("scatter", err))
		return
	}
	y, err := measureParam(r, "y", model.VerticalBreak)
	if err != nil {
		writeFailure(w, Wrap("scatter", err))
		return
	}
	series, err := h.deps.Scatter(r.Context(), key, f, x, y)
	if err != nil {
		writeFailure(w, Wrap("scatter", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(series))
}

// HandleIndicator handles GET /subjects/{key}/indicator.
func (h *SubjectsHandler) HandleIndicator(w http.ResponseWriter, r *http.Request) {
	key, f, ok := h.request(w, r)
	if !ok {
		return
	}
	rows, err := h.deps.Indicator(r.Context(), key, f)
	if err != nil {
		writeFailure(w, Wrap("indicator", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// HandleCompare handles GET /compare/fastball.
func (h *SubjectsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, h.deps.DefaultFilter())
	if err != nil {
		writeFailure(w, Wrap("compare", err))
		return
	}
	pts, err := h.deps.CompareFastballs(r.Context(), f)
	if err != nil {
		writeFailure(w, Wrap("compare", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(pts))
}

// request reads the subject key and the filter, writing a 400 on failure.
func (h *SubjectsHandler) request(w http.ResponseWriter, r *http.Request) (string, aggregate.Filter, bool) {
	return subjectRequest(w, r, h.deps.DefaultFilter())
}

func subjectRequest(w http.ResponseWriter, r *http.Request, def aggregate.Filter) (string, aggregate.Filter, bool) {
	key := r.PathValue("key")
	if key == "" {
		writeFailure(w, NewKind("subject", ErrBadRequest, "missing subject key"))
		return "", def, false
	}
	f, err := parseFilter(r, def)
	if err != nil {
		writeFailure(w, Wrap("subject", err))
		return "", def, false
	}
	return key, f, true
}

// nonNil keeps empty results encoding as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
