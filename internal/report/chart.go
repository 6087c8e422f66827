package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/mwiater/fieldreport/internal/rsrp"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	barChartWidth   = 360
	barChartHeight  = 260
	lineChartWidth  = 720
	lineChartHeight = 300

	noDataText = "No data available"
)

var (
	dutColor = drawing.ColorFromHex("0d6efd")
	refColor = drawing.ColorFromHex("6c757d")
	pc2Color = drawing.ColorFromHex("198754")
	pc3Color = drawing.ColorFromHex("fd7e14")
)

// Placeholder is the SVG shown in place of a chart without data.
func Placeholder(width, height int) template.HTML {
	return placeholder(width, height, noDataText)
}

func placeholder(width, height int, text string) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" class="chart-placeholder">`+
			`<rect width="100%%" height="100%%" fill="#f8f9fa" stroke="#dee2e6"/>`+
			`<text x="50%%" y="50%%" text-anchor="middle" dominant-baseline="middle" fill="#6c757d">%s</text></svg>`,
		width, height, template.HTMLEscapeString(text)))
}

// BarChartSVG draws the DUT and REF bars of a generic or ping test case.
func BarChartSVG(title string, view GenericView) template.HTML {
	if !view.HasMeans {
		return Placeholder(barChartWidth, barChartHeight)
	}

	var ticks []chart.Tick
	for _, v := range view.Axis.Ticks() {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	bc := chart.BarChart{
		Title:      view.ChartLabel,
		Width:      barChartWidth,
		Height:     barChartHeight,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: view.Axis.Max},
			Ticks: ticks,
		},
		Bars: []chart.Value{
			{Value: view.DUTMean, Label: "DUT", Style: chart.Style{FillColor: dutColor, StrokeColor: dutColor}},
			{Value: view.REFMean, Label: "REF", Style: chart.Style{FillColor: refColor, StrokeColor: refColor}},
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		logging.GetLogger().WithField("test", title).Warnf("bar chart render failed: %v", err)
		return Placeholder(barChartWidth, barChartHeight)
	}
	return template.HTML(buf.String())
}

// LineChartSVG draws the PC2 and PC3 samples of one RSRP run.
// A run without samples gets a placeholder naming the run. Fewer than two
// distinct sample positions are padded so single points still plot.
func LineChartSVG(series rsrp.Series) template.HTML {
	missing := placeholder(lineChartWidth, lineChartHeight,
		fmt.Sprintf("%s for Run %d.", noDataText, series.Run))

	var lines []chart.Series
	xr := bounds{min: math.Inf(1), max: math.Inf(-1)}
	yr := bounds{min: math.Inf(1), max: math.Inf(-1)}
	add := func(name string, points []rsrp.Point, color drawing.Color) {
		if len(points) == 0 {
			return
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i], ys[i] = float64(p.X), p.Y
			xr.add(xs[i])
			yr.add(ys[i])
		}
		style := chart.Style{StrokeColor: color, StrokeWidth: 1.5}
		if len(points) == 1 {
			style.DotColor = color
			style.DotWidth = 3
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	add("PC2", series.PC2, pc2Color)
	add("PC3", series.PC3, pc3Color)
	if len(lines) == 0 {
		return missing
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Run %d RSRP", series.Run),
		Width:      lineChartWidth,
		Height:     lineChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Sample"},
		YAxis:      chart.YAxis{Name: "dBm"},
		Series:     lines,
	}
	if xr.flat() {
		ch.XAxis.Range = &chart.ContinuousRange{Min: xr.min - 1, Max: xr.max + 1}
	}
	if yr.flat() {
		ch.YAxis.Range = &chart.ContinuousRange{Min: yr.min - 5, Max: yr.max + 5}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		logging.GetLogger().WithField("run", series.Run).Warnf("rsrp chart render failed: %v", err)
		return missing
	}
	return template.HTML(buf.String())
}

type bounds struct{ min, max float64 }

func (b *bounds) add(v float64) {
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b bounds) flat() bool { return b.max-b.min == 0 }

// AttachCharts renders every chart of doc in place.
func AttachCharts(doc *Document) {
	for ci := range doc.Categories {
		for si := range doc.Categories[ci].Sections {
			section := &doc.Categories[ci].Sections[si]
			if section.Generic != nil {
				section.Generic.Chart = BarChartSVG(section.Title(), *section.Generic)
			}
		}
	}
	for i := range doc.RSRP {
		doc.RSRP[i].Chart = LineChartSVG(doc.RSRP[i].Series)
	}
}
