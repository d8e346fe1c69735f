// Package gochart renders frequency charts as PNG images with go-chart.
package gochart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"rolstat/domain/rol"
	"rolstat/internal"
	"rolstat/ports"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"
)

// Default image size in pixels
const (
	DefaultWidth  = 640
	DefaultHeight = 400
)

// Palette of the chart bars and slices
var palette = []drawing.Color{
	drawing.ColorFromHex("3366cc"),
	drawing.ColorFromHex("dc3912"),
	drawing.ColorFromHex("ff9900"),
	drawing.ColorFromHex("109618"),
	drawing.ColorFromHex("990099"),
	drawing.ColorFromHex("0099c6"),
	drawing.ColorFromHex("dd4477"),
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

// Renderer draws the four charts of a distribution concurrently
type Renderer struct {
	width, height int
	log           *internal.Logger
}

// NewRenderer creates a renderer; non-positive sizes use the defaults
func NewRenderer(width, height int, logger *internal.Logger) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{width: width, height: height, log: logger.Named("gochart")}
}

// Render draws one chart per rol.ChartSpecs entry, in that order
func (r *Renderer) Render(ctx context.Context, data rol.ChartData) ([]ports.Chart, error) {
	if len(data.Labels) == 0 {
		return nil, nil
	}

	charts := make([]ports.Chart, len(rol.ChartSpecs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range rol.ChartSpecs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := r.draw(spec, data, &buf); err != nil {
				return fmt.Errorf("%s chart: %w", spec.Kind, err)
			}
			charts[i] = &pngChart{spec: spec, png: buf.Bytes()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, c := range charts {
			if c != nil {
				c.Destroy()
			}
		}
		return nil, err
	}
	r.log.Debug("rendered %d charts for %d labels", len(charts), len(data.Labels))
	return charts, nil
}

func (r *Renderer) draw(spec rol.ChartSpec, data rol.ChartData, w io.Writer) error {
	switch spec.Kind {
	case rol.ChartBarHorizontal:
		return r.horizontalBars(spec.Title, data).Render(chart.PNG, w)
	case rol.ChartLine:
		return r.cumulativeLine(spec.Title, data).Render(chart.PNG, w)
	case rol.ChartColumn:
		return r.columns(spec.Title, data).Render(chart.PNG, w)
	case rol.ChartPie:
		return r.pie(spec.Title, data).Render(chart.PNG, w)
	default:
		return fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
}

func (r *Renderer) horizontalBars(title string, data rol.ChartData) chart.StackedBarChart {
	bars := make([]chart.StackedBar, len(data.Labels))
	for i, label := range data.Labels {
		bars[i] = chart.StackedBar{
			Name: label,
			Values: []chart.Value{{
				Label: strconv.Itoa(data.Counts[i]),
				Value: float64(data.Counts[i]),
				Style: chart.Style{FillColor: colorAt(0), StrokeColor: colorAt(0)},
			}},
		}
	}
	return chart.StackedBarChart{
		Title:        title,
		Width:        r.width,
		Height:       r.height,
		IsHorizontal: true,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:         bars,
	}
}

func (r *Renderer) cumulativeLine(title string, data rol.ChartData) chart.Chart {
	xs := make([]float64, len(data.Labels))
	ys := make([]float64, len(data.Labels))
	ticks := make([]chart.Tick, len(data.Labels))
	for i, label := range data.Labels {
		xs[i] = float64(i)
		ys[i] = float64(data.Cumulative[i])
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	// A continuous series needs two points to have an x range.
	if len(xs) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}

	style := chart.Style{StrokeColor: colorAt(0), StrokeWidth: 2, DotColor: colorAt(0), DotWidth: 4}
	return chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Ticks: ticks, Range: &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]}},
		YAxis:      chart.YAxis{Name: "FAA", Range: &chart.ContinuousRange{Min: 0, Max: yMax(data.Total)}},
		Series: []chart.Series{chart.ContinuousSeries{
			Name:    "FAA",
			XValues: xs,
			YValues: ys,
			Style:   style,
		}},
	}
}

func (r *Renderer) columns(title string, data rol.ChartData) chart.BarChart {
	bars := make([]chart.Value, len(data.Labels))
	peak := 0
	for i, label := range data.Labels {
		bars[i] = chart.Value{
			Label: label,
			Value: float64(data.Counts[i]),
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: colorAt(i)},
		}
		peak = max(peak, data.Counts[i])
	}
	return chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth(r.width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: yMax(peak)}},
		Bars:       bars,
	}
}

func (r *Renderer) pie(title string, data rol.ChartData) chart.PieChart {
	values := make([]chart.Value, len(data.Labels))
	for i, label := range data.Labels {
		values[i] = chart.Value{
			Label: label + " (" + rol.FormatPercent(data.Percentages[i]) + ")",
			Value: data.Percentages[i],
			Style: chart.Style{FillColor: colorAt(i)},
		}
	}
	return chart.PieChart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
}

// yMax keeps the axis range non-empty when every value is zero
func yMax(v int) float64 {
	if v <= 0 {
		return 1
	}
	return float64(v)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	return max(8, min(60, width/(2*n)))
}

// pngChart is a rendered chart held in memory until destroyed
type pngChart struct {
	mu   sync.Mutex
	spec rol.ChartSpec
	png  []byte
}

func (c *pngChart) Kind() rol.ChartKind { return c.spec.Kind }
func (c *pngChart) Title() string       { return c.spec.Title }

func (c *pngChart) WriteTo(w io.Writer) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.png == nil {
		return 0, fmt.Errorf("%s chart was destroyed", c.spec.Kind)
	}
	n, err := w.Write(c.png)
	return int64(n), err
}

func (c *pngChart) Destroy() {
	c.mu.Lock()
	c.png = nil
	c.mu.Unlock()
}

var _ ports.ChartRenderer = (*Renderer)(nil)
