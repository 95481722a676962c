package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
)

// dashboardHandler handles dashboard requests
type dashboardHandler struct {
	deps QueryDependencies
}

func newDashboardHandler(deps QueryDependencies) *dashboardHandler {
	return &dashboardHandler{deps: deps}
}

// dashboardData is everything the page shows.
type dashboardData struct {
	Subjects  []types.SubjectInfo
	Selected  string
	Query     string
	Measures  []model.Measure
	Summary   []aggregate.SummaryRow
	Indicator []aggregate.IndicatorRow
	Error     string
}

// HandleDashboard handles GET /dashboard?subject=<key>&<filter params>.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := dashboardData{}

	subs, err := h.deps.Subjects(ctx)
	if err != nil {
		writeFailure(w, Wrap("dashboard", err))
		return
	}
	data.Subjects = subs

	f, err := parseFilter(r, h.deps.DefaultFilter())
	if err != nil {
		writeFailure(w, Wrap("dashboard", err))
		return
	}

	data.Selected = r.URL.Query().Get("subject")
	if data.Selected == "" && len(subs) > 0 {
		data.Selected = subs[0].Key
	}
	q := r.URL.Query()
	q.Del("subject")
	data.Query = q.Encode()

	if data.Selected != "" {
		b, err := h.deps.Observations(ctx, data.Selected, f)
		if err == nil {
			data.Measures = b.Schema.Measures()
			data.Summary, err = h.deps.Summary(ctx, data.Selected, f)
		}
		if err == nil {
			data.Indicator, err = h.deps.Indicator(ctx, data.Selected, f)
		}
		if err != nil {
			data.Error = err.Error()
		}
	}

	templ.Handler(dashboardPage(data)).ServeHTTP(w, r)
}

var dashboardCharts = []string{"trend", "scatter", "movement"}

func dashboardURL(key string) templ.SafeURL {
	return templ.URL("/dashboard?subject=" + url.QueryEscape(key))
}

// subjectURL returns "/subjects/<key><path>?<query>".
func subjectURL(key, path, query string) templ.SafeURL {
	u := "/subjects/" + url.PathEscape(key) + path
	if query != "" {
		u += "?" + query
	}
	return templ.URL(u)
}

func subjectLabel(s types.SubjectInfo) string {
	return fmt.Sprintf("%s (%d)", s.Key, s.Rows)
}

func formatCount(n int) string { return strconv.Itoa(n) }

func formatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
