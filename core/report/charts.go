package report

import (
	"bytes"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"mzview/core/msdata"
)

// Chart palette.
var (
	ticLineColor = drawing.ColorFromHex("2563EB")
	eicLineColor = drawing.ColorFromHex("24EB84")
	markerColor  = drawing.ColorFromHex("D324EB")
)

// ErrNotEnoughPoints means a series has fewer than the two points the
// chart renderer needs for an x-range.
var ErrNotEnoughPoints = errors.New("report: chart needs at least two points")

// ChartOptions controls chart rendering.
type ChartOptions struct {
	Width      int
	Height     int
	ShowPoints bool // draw individual data-point markers
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	return o
}

// RenderTIC renders the total-ion chromatogram as a PNG.
func RenderTIC(points []msdata.Point, opts ChartOptions) ([]byte, error) {
	return renderSeries(points, "Total Ion Chromatogram", ticLineColor, opts)
}

// RenderEIC renders an extracted-ion chromatogram as a PNG, with the
// extraction window in the title.
func RenderEIC(points []msdata.Point, targetMz, tolerance float64, opts ChartOptions) ([]byte, error) {
	title := fmt.Sprintf("Extracted Ion Chromatogram (m/z %g ± %g)", targetMz, tolerance)
	return renderSeries(points, title, eicLineColor, opts)
}

func renderSeries(points []msdata.Point, title string, lineColor drawing.Color, opts ChartOptions) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughPoints
	}
	opts = opts.withDefaults()

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.RetentionTime
		ys[i] = p.Intensity
	}

	style := chart.Style{
		StrokeColor: lineColor,
		StrokeWidth: 2.0,
	}
	if opts.ShowPoints {
		style.DotColor = markerColor
		style.DotWidth = 3.0
	}

	ch := chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Retention Time (s)"},
		YAxis:      chart.YAxis{Name: "Intensity"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   style,
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
