package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/pitchtrack/internal/adapters/upload"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
)

// Content types served by ChartsHandler.
const (
	contentTypePNG  = "image/png"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ChartsHandler serves rendered charts, the workbook and publishing.
type ChartsHandler struct {
	query  QueryDependencies
	export ExportDependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(query QueryDependencies, export ExportDependencies) *ChartsHandler {
	return &ChartsHandler{query: query, export: export}
}

// HandleChart handles GET /subjects/{key}/charts/{trend|scatter|movement}.png.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	key, f, ok := subjectRequest(w, r, h.query.DefaultFilter())
	if !ok {
		return
	}
	ctx := r.Context()
	var buf bytes.Buffer
	var err error
	switch chart := r.PathValue("chart"); chart {
	case "trend.png":
		var (
			m      model.Measure
			bucket aggregate.Bucket
		)
		if m, err = measureParam(r, "measure", model.Velocity); err == nil {
			if bucket, err = aggregate.ParseBucket(r.URL.Query().Get("bucket")); err == nil {
				err = h.export.TrendChart(ctx, &buf, key, f, m, bucket)
			}
		}
	case "scatter.png":
		var x, y model.Measure
		if x, err = measureParam(r, "x", model.Velocity); err == nil {
			if y, err = measureParam(r, "y", model.TotalSpin); err == nil {
				err = h.export.ScatterChart(ctx, &buf, key, f, x, y)
			}
		}
	case "movement.png":
		err = h.export.MovementChart(ctx, &buf, key, f)
	default:
		writeFailure(w, fmt.Errorf("%w: unknown chart %q", ErrNotFound, chart))
		return
	}
	if err != nil {
		writeFailure(w, Wrap("chart", err))
		return
	}
	writeBytes(w, contentTypePNG, "", buf.Bytes())
}

// HandleCompareChart handles GET /compare/fastball.png?x=&y=.
func (h *ChartsHandler) HandleCompareChart(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, h.query.DefaultFilter())
	if err != nil {
		writeFailure(w, Wrap("compare chart", err))
		return
	}
	x, err := measureParam(r, "x", model.Velocity)
	if err != nil {
		writeFailure(w, Wrap("compare chart", err))
		return
	}
	y, err := measureParam(r, "y", model.TotalSpin)
	if err != nil {
		writeFailure(w, Wrap("compare chart", err))
		return
	}
	var buf bytes.Buffer
	if err := h.export.CompareChart(r.Context(), &buf, f, x, y); err != nil {
		writeFailure(w, Wrap("compare chart", err))
		return
	}
	writeBytes(w, contentTypePNG, "", buf.Bytes())
}

// HandleExport handles GET /subjects/{key}/export.xlsx.
func (h *ChartsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	key, f, ok := subjectRequest(w, r, h.query.DefaultFilter())
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.export.Export(r.Context(), &buf, key, f); err != nil {
		writeFailure(w, Wrap("export", err))
		return
	}
	writeBytes(w, contentTypeXLSX, key+"_summary.xlsx", buf.Bytes())
}

// HandlePublish handles POST /subjects/{key}/publish.
func (h *ChartsHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	key, f, ok := subjectRequest(w, r, h.query.DefaultFilter())
	if !ok {
		return
	}
	res, err := h.export.Publish(r.Context(), key, f)
	if errors.Is(err, upload.ErrUpload) {
		writeFailure(w, WrapKind("publish", ErrUpstream, err))
		return
	}
	if err != nil {
		writeFailure(w, Wrap("publish", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeBytes(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
