package papyrus

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var _ chartRenderer = goChartRenderer{}

// goChartRenderer rasterizes charts with go-chart.
//
// Bar charts with several datasets are drawn stacked; pie and doughnut
// charts use the first dataset and fall back to bars when it sums to zero.
// Flat series get an explicit axis range, go-chart rejects a zero one.
type goChartRenderer struct{}

// titlePadding leaves room above the plot for the title.
const titlePadding = 50

// RenderPNG implements chartRenderer.
func (goChartRenderer) RenderPNG(kind ChartType, data ChartData, title string, width, height int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch kind {
	case ChartBar:
		if len(data.Datasets) > 1 {
			err = stackedBarChart(data, title, width, height).Render(chart.PNG, &buf)
		} else {
			err = barChart(data, title, width, height).Render(chart.PNG, &buf)
		}
	case ChartPie, ChartDoughnut:
		switch {
		case sum(data.Datasets[0].Data) == 0:
			err = barChart(data, title, width, height).Render(chart.PNG, &buf)
		case kind == ChartPie:
			err = pieChart(data, title, width, height).Render(chart.PNG, &buf)
		default:
			err = donutChart(data, title, width, height).Render(chart.PNG, &buf)
		}
	case ChartLine, ChartScatter, ChartBubble:
		err = seriesChart(kind, data, title, width, height).Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChartType, kind)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func barChart(data ChartData, title string, width, height int) chart.BarChart {
	ds := data.Datasets[0]
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: titlePadding}},
		Bars:       values(data.Labels, ds),
	}
	if lo, hi := bounds(ds.Data); lo == hi {
		bc.YAxis.Range = flatRange(lo)
	}
	return bc
}

func stackedBarChart(data ChartData, title string, width, height int) chart.StackedBarChart {
	bars := make([]chart.StackedBar, len(data.Labels))
	for i, label := range data.Labels {
		bar := chart.StackedBar{Name: label}
		for j, ds := range data.Datasets {
			bar.Values = append(bar.Values, chart.Value{
				Label: ds.Label,
				Value: ds.Data[i],
				Style: chart.Style{FillColor: colorOr(ds.BackgroundColor.At(j), j)},
			})
		}
		bars[i] = bar
	}
	return chart.StackedBarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: titlePadding}},
		Bars:       bars,
	}
}

func pieChart(data ChartData, title string, width, height int) chart.PieChart {
	return chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values(data.Labels, data.Datasets[0]),
	}
}

func donutChart(data ChartData, title string, width, height int) chart.DonutChart {
	return chart.DonutChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values(data.Labels, data.Datasets[0]),
	}
}

// values maps one dataset to go-chart values, one color per point.
func values(labels []string, ds Dataset) []chart.Value {
	out := make([]chart.Value, len(ds.Data))
	for i, v := range ds.Data {
		out[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   colorOr(ds.BackgroundColor.At(i), i),
				StrokeColor: colorOr(ds.BorderColor.At(i), i),
				StrokeWidth: ds.BorderWidth,
			},
		}
	}
	return out
}

// seriesChart draws line, scatter and bubble charts on x/y axes.
func seriesChart(kind ChartType, data ChartData, title string, width, height int) chart.Chart {
	graph := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: titlePadding, Left: 20}},
	}

	var allX, allY []float64
	for _, ds := range data.Datasets {
		xs, ys, _ := coordinates(ds)
		allX = append(allX, xs...)
		allY = append(allY, ys...)
	}
	xlo, xhi := bounds(allX)
	switch {
	case xlo == xhi:
		graph.XAxis = chart.XAxis{Range: &chart.ContinuousRange{Min: xlo - 1, Max: xhi + 1}}
	case len(data.Labels) > 0:
		ticks := make([]chart.Tick, len(data.Labels))
		for i, label := range data.Labels {
			ticks[i] = chart.Tick{Value: float64(i), Label: label}
		}
		graph.XAxis = chart.XAxis{Ticks: ticks}
	}
	if ylo, yhi := bounds(allY); ylo == yhi {
		graph.YAxis = chart.YAxis{Range: flatRange(ylo)}
	}

	for i, ds := range data.Datasets {
		xs, ys, rs := coordinates(ds)
		stroke := colorOr(ds.BorderColor.At(0), i)
		style := chart.Style{StrokeColor: stroke, StrokeWidth: 2}

		switch kind {
		case ChartLine:
			if ds.Fill {
				style.FillColor = colorOr(ds.BackgroundColor.At(0), i)
			}
		case ChartScatter:
			style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: colorOr(ds.BackgroundColor.At(0), i)}
		case ChartBubble:
			radii := rs
			style = chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    colorOr(ds.BackgroundColor.At(0), i).WithAlpha(180),
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					if index < len(radii) && radii[index] > 0 {
						return radii[index]
					}
					return 5
				},
			}
		}

		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	if len(data.Datasets) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph
}

// coordinates returns x, y and radius slices. Numeric data is placed at
// x = index so it lines up with the label ticks.
func coordinates(ds Dataset) (xs, ys, rs []float64) {
	if len(ds.Points) > 0 {
		for _, p := range ds.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
			rs = append(rs, p.R)
		}
		return xs, ys, rs
	}
	for i, v := range ds.Data {
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	return xs, ys, nil
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

func bounds(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// flatRange spans zero and v, or [0, 1] when v is zero.
func flatRange(v float64) *chart.ContinuousRange {
	lo, hi := math.Min(0, v), math.Max(0, v)
	if lo == hi {
		hi = 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// colorOr parses raw, falling back to the palette entry for index.
func colorOr(raw string, index int) drawing.Color {
	if c, ok := parseColor(raw); ok {
		return c
	}
	c, _ := parseColor(Palette[index%len(Palette)])
	return c
}

// parseColor accepts #rgb, #rrggbb, #rrggbbaa and rgb()/rgba() notation.
func parseColor(raw string) (drawing.Color, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseRGBColor(s[5:len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBColor(s[4:len(s)-1], false)
	}
	return drawing.Color{}, false
}

func parseHexColor(hex string) (drawing.Color, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return drawing.Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return drawing.Color{}, false
	}
	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func parseRGBColor(body string, withAlpha bool) (drawing.Color, bool) {
	parts := strings.Split(body, ",")
	if (withAlpha && len(parts) != 4) || (!withAlpha && len(parts) != 3) {
		return drawing.Color{}, false
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return drawing.Color{}, false
		}
		rgb[i] = uint8(n)
	}
	alpha := uint8(255)
	if withAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, false
		}
		alpha = uint8(a*255 + 0.5)
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, true
}
