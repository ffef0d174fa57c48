// Package chart renders aggregated rows and table summaries as PNG or SVG
// images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

// ErrNoData is returned when there is nothing to plot
var ErrNoData = errors.New("chart: no data to plot")

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unknown chart format %q", s)
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Options are the common settings of every chart
type Options struct {
	Title  string
	YName  string
	Width  int
	Height int
	Format Format
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 480
	}
	return w, h
}

// valueRange tracks the y extent of everything plotted
type valueRange struct {
	min, max float64
	ok       bool
}

func (r *valueRange) add(v float64) {
	if !r.ok || v < r.min {
		r.min = v
	}
	if !r.ok || v > r.max {
		r.max = v
	}
	r.ok = true
}

// axis returns a non-empty range that includes zero
func (r valueRange) axis() *gochart.ContinuousRange {
	lo, hi := math.Min(0, r.min), r.max
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

type point struct {
	t time.Time
	v float64
}

// Line draws one line per series of rows, x = period start and y = value.
// When rows carry derivatives they are drawn as a dashed overlay in the
// series color. Every series ends with a text label of its key. Null values
// are skipped.
func Line(w io.Writer, opts Options, rows []model.AggregatedRow) error {
	var (
		series []gochart.Series
		labels []gochart.Value2
		yr     valueRange
		first  time.Time
		last   time.Time
	)

	flush := func(idx int, key string, values, derivs []point) {
		if len(values) == 0 && len(derivs) == 0 {
			return
		}
		color := gochart.GetDefaultColor(idx)
		if len(values) > 0 {
			series = append(series, timeSeries(key, values, gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
			}))
			end := values[len(values)-1]
			labels = append(labels, gochart.Value2{
				XValue: gochart.TimeToFloat64(end.t),
				YValue: end.v,
				Label:  key,
			})
		}
		if len(derivs) > 0 {
			series = append(series, timeSeries(key+" (peaks)", derivs, gochart.Style{
				StrokeColor:     color.WithAlpha(160),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5, 5},
			}))
		}
	}

	idx := 0
	var values, derivs []point
	for i, r := range rows {
		if r.Value != nil {
			values = append(values, point{r.PeriodStart, *r.Value})
			yr.add(*r.Value)
		}
		if r.Derivative != nil {
			derivs = append(derivs, point{r.PeriodStart, *r.Derivative})
			yr.add(*r.Derivative)
		}
		if r.Value != nil || r.Derivative != nil {
			if first.IsZero() || r.PeriodStart.Before(first) {
				first = r.PeriodStart
			}
			if r.PeriodStart.After(last) {
				last = r.PeriodStart
			}
		}
		if i == len(rows)-1 || rows[i+1].SeriesKey != r.SeriesKey {
			flush(idx, r.SeriesKey, values, derivs)
			values, derivs = nil, nil
			idx++
		}
	}
	if len(series) == 0 {
		return ErrNoData
	}
	if !last.After(first) {
		last = first.AddDate(0, 0, 1)
	}
	series = append(series, gochart.AnnotationSeries{Annotations: labels})

	width, height := opts.size()
	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 96, Bottom: 28}},
		XAxis: gochart.XAxis{
			Name:           "period",
			ValueFormatter: gochart.TimeDateValueFormatter,
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(first),
				Max: gochart.TimeToFloat64(last),
			},
		},
		YAxis:  gochart.YAxis{Name: opts.YName, Range: yr.axis()},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(opts.Format.provider(), w)
}

// timeSeries pads single points to two x values so the line has extent
func timeSeries(name string, pts []point, style gochart.Style) gochart.TimeSeries {
	xs := make([]time.Time, 0, len(pts)+1)
	ys := make([]float64, 0, len(pts)+1)
	for _, p := range pts {
		xs = append(xs, p.t)
		ys = append(ys, p.v)
	}
	if len(pts) == 1 {
		xs = append(xs, pts[0].t.Add(time.Hour))
		ys = append(ys, pts[0].v)
		style.DotWidth = 4
		style.DotColor = style.StrokeColor
	}
	return gochart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}

// Bar is one bar of a bar chart
type Bar struct {
	Label string
	Value float64
}

// Bars draws a bar chart in the given order
func Bars(w io.Writer, opts Options, bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	var yr valueRange
	values := make([]gochart.Value, len(bars))
	for i, b := range bars {
		values[i] = gochart.Value{Label: b.Label, Value: b.Value}
		yr.add(b.Value)
	}

	width, height := opts.size()
	barWidth := (width - 80) / len(bars)
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 4 {
		barWidth = 4
	}
	ch := gochart.BarChart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		YAxis:      gochart.YAxis{Name: opts.YName, Range: yr.axis()},
		Bars:       values,
	}
	return ch.Render(opts.Format.provider(), w)
}

// CountBars turns value counts into bars, keeping at most limit of them
func CountBars(counts []model.CountRow, limit int) []Bar {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	out := make([]Bar, len(counts))
	for i, c := range counts {
		out[i] = Bar{Label: c.Value, Value: float64(c.Count)}
	}
	return out
}

// MeltBars turns melted rows into bars labelled by variable. Non-numeric
// values are skipped.
func MeltBars(rows []model.MeltRow) []Bar {
	out := make([]Bar, 0, len(rows))
	for _, r := range rows {
		if v, ok := utils.ToFloat(r.Value); ok {
			out = append(out, Bar{Label: r.Variable, Value: v})
		}
	}
	return out
}
