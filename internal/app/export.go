package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/pitchtrack/internal/adapters/render"
	"github.com/okian/pitchtrack/internal/adapters/upload"
	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
	"github.com/okian/pitchtrack/internal/domain/types"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// Content types of rendered artifacts.
const (
	ContentTypePNG  = "image/png"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Chart kinds.
const (
	ChartTrend    = "trend"
	ChartScatter  = "scatter"
	ChartMovement = "movement"
)

// ChartRequest selects what a chart plots. Zero fields take defaults.
type ChartRequest struct {
	Measure model.Measure
	Bucket  aggregate.Bucket
	X, Y    model.Measure
}

// DefaultChartRequest plots velocity by day and velocity against total spin.
func DefaultChartRequest() ChartRequest {
	return ChartRequest{Measure: model.Velocity, Bucket: aggregate.Day, X: model.Velocity, Y: model.TotalSpin}
}

// Chart renders one chart kind of key as PNG.
func (s *Service) Chart(ctx context.Context, w io.Writer, key, kind string, f aggregate.Filter, req ChartRequest) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	b, err := s.observations(ctx, key, f)
	if err != nil {
		return err
	}
	if err := s.chart(w, key, kind, b, f, req); err != nil {
		return err
	}
	metrics.RecordArtifact(kind)
	return nil
}

// TrendChart renders the bucketed mean of m.
func (s *Service) TrendChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter, m model.Measure, bucket aggregate.Bucket) error {
	req := DefaultChartRequest()
	req.Measure, req.Bucket = m, bucket
	return s.Chart(ctx, w, key, ChartTrend, f, req)
}

// ScatterChart renders x against y per category.
func (s *Service) ScatterChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter, x, y model.Measure) error {
	req := DefaultChartRequest()
	req.X, req.Y = x, y
	return s.Chart(ctx, w, key, ChartScatter, f, req)
}

// MovementChart renders horizontal against vertical break within the break limit.
func (s *Service) MovementChart(ctx context.Context, w io.Writer, key string, f aggregate.Filter) error {
	return s.Chart(ctx, w, key, ChartMovement, f, DefaultChartRequest())
}

func (s *Service) chart(w io.Writer, key, kind string, b model.Batch, f aggregate.Filter, req ChartRequest) error {
	switch kind {
	case ChartTrend:
		pts := s.agg.Trend(b, req.Measure, req.Bucket)
		return s.renderer.Trend(w, fmt.Sprintf("%s %s by %s", key, req.Measure, req.Bucket), req.Measure, pts)
	case ChartScatter:
		series := s.agg.Scatter(b, req.X, req.Y)
		return s.renderer.Scatter(w, fmt.Sprintf("%s %s vs %s", key, req.X, req.Y), req.X, req.Y, series, 0)
	case ChartMovement:
		series := s.agg.Scatter(b, model.HorizontalBreak, model.VerticalBreak)
		return s.renderer.Scatter(w, key+" movement", model.HorizontalBreak, model.VerticalBreak, series, f.BreakLimit)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, kind)
}

// CompareChart renders the fastball comparison of every subject.
func (s *Service) CompareChart(ctx context.Context, w io.Writer, f aggregate.Filter, x, y model.Measure) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	pts, err := s.compareFastballs(ctx, f)
	if err != nil {
		return err
	}
	if err := s.renderer.Compare(w, "fastball comparison", x, y, pts); err != nil {
		return err
	}
	metrics.RecordArtifact("compare")
	return nil
}

// Export writes the summary workbook of key.
func (s *Service) Export(ctx context.Context, w io.Writer, key string, f aggregate.Filter) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	b, err := s.observations(ctx, key, f)
	if err != nil {
		return err
	}
	if err := s.export(w, key, b); err != nil {
		return err
	}
	metrics.RecordArtifact("xlsx")
	return nil
}

func (s *Service) export(w io.Writer, key string, b model.Batch) error {
	return s.renderer.XLSX(w, render.Workbook{
		Subject:      key,
		Session:      s.agg.SessionDate(b).Format(model.DateLayout),
		Schema:       b.Schema,
		Summary:      s.agg.Summary(b),
		Indicator:    s.agg.Indicator(b),
		Observations: b.Observations,
	})
}

// ArtifactName returns "<key>_<session>_<nn>_<kind>.<ext>".
func ArtifactName(key, session string, page int, kind, ext string) string {
	return fmt.Sprintf("%s_%s_%02d_%s.%s", key, session, page, kind, ext)
}

// CompareName returns "ALL_fastball_<session>_compare_<n>.png".
func CompareName(session string, page int) string {
	return fmt.Sprintf("ALL_fastball_%s_compare_%d.png", session, page)
}

// comparePages are the measure pairs of the fastball comparison pages.
var comparePages = [][2]model.Measure{
	{model.Velocity, model.TotalSpin},
	{model.HorizontalBreak, model.VerticalBreak},
}

// Artifacts renders the chart pages and the workbook of key, followed by the
// fastball comparison pages of every subject. Charts without data are
// skipped; the workbook is always produced.
func (s *Service) Artifacts(ctx context.Context, key string, f aggregate.Filter) (string, []types.Artifact, error) {
	release, err := s.acquire()
	if err != nil {
		return "", nil, err
	}
	defer release()
	return s.artifacts(ctx, key, f)
}

func (s *Service) artifacts(ctx context.Context, key string, f aggregate.Filter) (string, []types.Artifact, error) {
	b, err := s.observations(ctx, key, f)
	if err != nil {
		return "", nil, err
	}
	session := s.agg.SessionDate(b).Format(model.DateLayout)
	req := DefaultChartRequest()

	var out []types.Artifact
	for i, kind := range []string{ChartTrend, ChartScatter, ChartMovement} {
		var buf bytes.Buffer
		err := s.chart(&buf, key, kind, b, f, req)
		if errors.Is(err, render.ErrNoData) {
			s.logger.Debug(ctx, "chart skipped", logger.String("subject", key), logger.String("chart", kind))
			continue
		}
		if err != nil {
			return "", nil, err
		}
		metrics.RecordArtifact(kind)
		out = append(out, pngArtifact(ArtifactName(key, session, i+1, kind, "png"), &buf))
	}

	var buf bytes.Buffer
	if err := s.export(&buf, key, b); err != nil {
		return "", nil, err
	}
	metrics.RecordArtifact("xlsx")
	out = append(out, types.Artifact{
		Name:        ArtifactName(key, session, 4, "summary", "xlsx"),
		ContentType: ContentTypeXLSX,
		Size:        buf.Len(),
		Data:        buf.Bytes(),
	})

	pts, err := s.compareFastballs(ctx, f)
	if err != nil {
		return "", nil, err
	}
	for i, pair := range comparePages {
		var buf bytes.Buffer
		err := s.renderer.Compare(&buf, "fastball comparison", pair[0], pair[1], pts)
		if errors.Is(err, render.ErrNoData) {
			s.logger.Debug(ctx, "compare page skipped", logger.Int("page", i+1))
			continue
		}
		if err != nil {
			return "", nil, err
		}
		metrics.RecordArtifact("compare")
		out = append(out, pngArtifact(CompareName(session, i+1), &buf))
	}
	return session, out, nil
}

func pngArtifact(name string, buf *bytes.Buffer) types.Artifact {
	return types.Artifact{Name: name, ContentType: ContentTypePNG, Size: buf.Len(), Data: buf.Bytes()}
}

// Publish renders the artifacts of key and sends each to the uploader. A
// rejected artifact does not stop the others; the result counts both. The
// error wraps ErrPublish only when artifacts were rendered and none of them
// was uploaded.
func (s *Service) Publish(ctx context.Context, key string, f aggregate.Filter) (types.PublishResult, error) {
	release, err := s.acquire()
	if err != nil {
		return types.PublishResult{}, err
	}
	defer release()

	if s.uploader.Name() == upload.SinkNone {
		return types.PublishResult{}, upload.ErrDisabled
	}
	session, arts, err := s.artifacts(ctx, key, f)
	if err != nil {
		return types.PublishResult{}, err
	}

	res := types.PublishResult{Subject: key, Session: session, Sink: s.uploader.Name()}
	var errs []error
	for _, a := range arts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.uploader.Upload(ctx, a.Name, a.ContentType, a.Data); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, types.UploadFailure{Name: a.Name, Error: err.Error()})
			errs = append(errs, err)
			continue
		}
		res.Uploaded++
		res.Artifacts = append(res.Artifacts, a)
	}

	s.logger.Info(ctx, "publish finished",
		logger.String("subject", key),
		logger.String("sink", res.Sink),
		logger.Int("uploaded", res.Uploaded),
		logger.Int("failed", res.Failed))
	if res.Uploaded == 0 && res.Failed > 0 {
		return res, fmt.Errorf("%w: %s: %w", ErrPublish, key, errors.Join(errs...))
	}
	return res, nil
}
