// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/pitchtrack/internal/adapters/render"
	"github.com/okian/pitchtrack/internal/adapters/repository"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	"github.com/okian/pitchtrack/internal/domain/accumulate"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
)

// IngestDependencies accepts uploaded files.
type IngestDependencies interface {
	Ingest(ctx context.Context, files []model.RawFile) (types.IngestResult, error)
}

// QueryDependencies expose stored subjects.
type QueryDependencies interface {
	DefaultFilter() aggregate.Filter
	Subjects(ctx context.Context) ([]types.SubjectInfo, error)
	Observations(ctx context.Context, key string, f aggregate.Filter) (model.Batch, error)
	Summary(ctx context.Context, key string, f aggregate.Filter) ([]aggregate.SummaryRow, error)
	Trend(ctx context.Context, key string, f aggregate.Filter, m model.Measure, bucket aggregate.Bucket) ([]aggregate.TrendPoint, error)
	Scatter(ctx context.Context, key string, f aggregate.Filter, x, y model.Measure) ([]aggregate.ScatterSeries, error)
	Indicator(ctx context.Context, key string, f aggregate.Filter) ([]aggregate.IndicatorRow, error)
	CompareFastballs(ctx context.Context, f aggregate.Filter) ([]aggregate.ComparePoint, error)
}

// ExportDependencies render and publish artifacts.
type ExportDependencies interface {
	TrendChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter, m model.Measure, bucket aggregate.Bucket) error
	ScatterChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter, x, y model.Measure) error
	MovementChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter) error
	CompareChart(ctx context.Context, w io.Writer, f aggregate.Filter, x, y model.Measure) error
	Export(ctx context.Context, w io.Writer, key string, f aggregate.Filter) error
	Publish(ctx context.Context, key string, f aggregate.Filter) (types.PublishResult, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	IngestDependencies
	QueryDependencies
	ExportDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	ingestHandler    *IngestHandler
	subjectsHandler  *SubjectsHandler
	chartsHandler    *ChartsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := newOptions(opts...)
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		ingestHandler:    NewIngestHandler(deps, o.maxUploadBytes),
		subjectsHandler:  NewSubjectsHandler(deps),
		chartsHandler:    NewChartsHandler(deps, deps),
		dashboardHandler: newDashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /ingest", MetricsMiddleware(s.ingestHandler.HandleIngest, "ingest"))

	mux.HandleFunc("GET /subjects", MetricsMiddleware(s.subjectsHandler.HandleList, "subjects"))
	mux.HandleFunc("GET /subjects/{key}/observations", MetricsMiddleware(s.subjectsHandler.HandleObservations, "observations"))
	mux.HandleFunc("GET /subjects/{key}/summary", MetricsMiddleware(s.subjectsHandler.HandleSummary, "summary"))
	mux.HandleFunc("GET /subjects/{key}/trend", MetricsMiddleware(s.subjectsHandler.HandleTrend, "trend"))
	mux.HandleFunc("GET /subjects/{key}/scatter", MetricsMiddleware(s.subjectsHandler.HandleScatter, "scatter"))
	mux.HandleFunc("GET /subjects/{key}/indicator", MetricsMiddleware(s.subjectsHandler.HandleIndicator, "indicator"))
	mux.HandleFunc("GET /compare/fastball", MetricsMiddleware(s.subjectsHandler.HandleCompare, "compare"))

	mux.HandleFunc("GET /subjects/{key}/charts/{chart}", MetricsMiddleware(s.chartsHandler.HandleChart, "charts"))
	mux.HandleFunc("GET /subjects/{key}/export.xlsx", MetricsMiddleware(s.chartsHandler.HandleExport, "export"))
	mux.HandleFunc("POST /subjects/{key}/publish", MetricsMiddleware(s.chartsHandler.HandlePublish, "publish"))
	mux.HandleFunc("GET /compare/fastball.png", MetricsMiddleware(s.chartsHandler.HandleCompareChart, "compare_chart"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, aggregate.ErrUnknownBucket),
		errors.Is(err, aggregate.ErrUnknownMeasure):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrInvalidKey), errors.Is(err, accumulate.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "invalid_key", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, accumulate.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, render.ErrNoData):
		writeError(w, http.StatusNotFound, "no_data", err)
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, upload.ErrDisabled):
		writeError(w, http.StatusConflict, "upload_disabled", err)
	case errors.Is(err, ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
