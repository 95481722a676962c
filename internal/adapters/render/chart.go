// Package render draws chart pages as PNG and summary tables as XLSX.
package render

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
)

// Renderer draws charts at a fixed size.
type Renderer struct {
	width  int
	height int
}

// New creates a Renderer with A4 portrait proportions.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorOrange,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorCyan,
	chart.ColorYellow,
	chart.ColorAlternateGray,
	chart.ColorBlack,
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

// pointStyle renders points only, without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotWidth:    4,
		DotColor:    col,
	}
}

// span returns a non-degenerate range covering vals with 5% padding.
func span(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		d := math.Max(math.Abs(lo)*0.05, 1)
		return &chart.ContinuousRange{Min: lo - d, Max: hi + d}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// timeSpan pads a time axis by a day on each side.
func timeSpan(vals []float64) *chart.ContinuousRange {
	day := float64(24 * time.Hour)
	lo, hi := slices.Min(vals), slices.Max(vals)
	return &chart.ContinuousRange{Min: lo - day, Max: hi + day}
}

func (r *Renderer) render(w io.Writer, c chart.Chart) error {
	c.Width, c.Height = r.width, r.height
	c.Background = chart.Style{Padding: chart.Box{Top: 60, Left: 24, Right: 24, Bottom: 24}}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// Trend draws one line per category of a bucketed measure mean.
func (r *Renderer) Trend(w io.Writer, title string, m model.Measure, pts []aggregate.TrendPoint) error {
	if len(pts) == 0 {
		return fmt.Errorf("%w: no %s values", ErrNoData, m)
	}
	byCat := make(map[string]*chart.TimeSeries)
	var cats []string
	var xs, ys []float64
	for _, p := range pts {
		s, ok := byCat[p.Category]
		if !ok {
			s = &chart.TimeSeries{Name: p.Category}
			byCat[p.Category] = s
			cats = append(cats, p.Category)
		}
		s.XValues = append(s.XValues, p.Bucket)
		s.YValues = append(s.YValues, p.Mean)
		ys = append(ys, p.Mean)
	}
	slices.Sort(cats)

	series := make([]chart.Series, 0, len(cats))
	for i, c := range cats {
		s := byCat[c]
		s.Style = lineStyle(colorAt(i))
		if len(s.XValues) == 1 {
			// a single point has no x extent
			s.XValues = append(s.XValues, s.XValues[0].Add(time.Hour))
			s.YValues = append(s.YValues, s.YValues[0])
		}
		for _, t := range s.XValues {
			xs = append(xs, chart.TimeToFloat64(t))
		}
		series = append(series, *s)
	}

	return r.render(w, chart.Chart{
		Title: title,
		XAxis: chart.XAxis{
			Name:           "date",
			Range:          timeSpan(xs),
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis:  chart.YAxis{Name: m.String(), Range: span(ys)},
		Series: series,
	})
}

// Scatter draws x against y, one colour per category. A positive limit fixes
// both axes to [-limit, limit].
func (r *Renderer) Scatter(w io.Writer, title string, x, y model.Measure, series []aggregate.ScatterSeries, limit float64) error {
	var xs, ys []float64
	out := make([]chart.Series, 0, len(series))
	for i, s := range series {
		cs := chart.ContinuousSeries{Name: s.Category, Style: pointStyle(colorAt(i))}
		for _, p := range s.Points {
			cs.XValues = append(cs.XValues, p.X)
			cs.YValues = append(cs.YValues, p.Y)
		}
		xs = append(xs, cs.XValues...)
		ys = append(ys, cs.YValues...)
		out = append(out, cs)
	}
	if len(xs) == 0 {
		return fmt.Errorf("%w: no %s/%s pairs", ErrNoData, x, y)
	}

	xr, yr := span(xs), span(ys)
	if limit > 0 {
		xr = &chart.ContinuousRange{Min: -limit, Max: limit}
		yr = &chart.ContinuousRange{Min: -limit, Max: limit}
	}
	return r.render(w, chart.Chart{
		Title:  title,
		XAxis:  chart.XAxis{Name: x.String(), Range: xr},
		YAxis:  chart.YAxis{Name: y.String(), Range: yr},
		Series: out,
	})
}

// Compare draws one point per subject from fastball averages.
func (r *Renderer) Compare(w io.Writer, title string, x, y model.Measure, pts []aggregate.ComparePoint) error {
	series := make([]aggregate.ScatterSeries, 0, len(pts))
	for _, p := range pts {
		xv, yv := p.Means[x], p.Means[y]
		if !xv.Valid || !yv.Valid {
			continue
		}
		series = append(series, aggregate.ScatterSeries{
			Category: p.Subject,
			Points:   []aggregate.Point{{X: xv.Float, Y: yv.Float}},
		})
	}
	return r.Scatter(w, title, x, y, series, 0)
}
