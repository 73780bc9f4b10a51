package cmd

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/stats"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch
)

var (
	gradeColors = map[parser.GradeCategory]color.RGBA{
		parser.GradeBelow5:  {R: 0x87, G: 0xc2, B: 0x93, A: 255},
		parser.Grade5:       {R: 0xa0, G: 0xd3, B: 0x1c, A: 255},
		parser.Grade6:       {R: 0xff, G: 0xd2, B: 0x12, A: 255},
		parser.Grade7:       {R: 0xff, G: 0xb7, B: 0x45, A: 255},
		parser.Grade8:       {R: 0xff, G: 0x89, B: 0x72, A: 255},
		parser.Grade9:       {R: 0x99, G: 0x99, B: 0x99, A: 255},
		parser.GradeUnknown: {R: 0xbb, G: 0xbb, B: 0xbb, A: 255},
	}
	selectedStroke = color.RGBA{R: 0x6d, G: 0x6d, B: 0x6d, A: 255}
	bucketColor    = color.RGBA{R: 0x52, G: 0x79, B: 0xc7, A: 255}
	rangeColor     = color.RGBA{R: 0xfd, G: 0x37, B: 0x3e, A: 255}
)

// dimmed returns c at half opacity, used for points outside the selection.
func dimmed(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 128}
}

// gradeChartPlot draws the stacked horizontal bar chart of climb types per
// grade. Each grade contributes a selected and a dimmed layer so segments can
// be highlighted one by one.
func gradeChartPlot(chart stats.Chart, neutral bool, barPixels float64) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = color.White
	p.X.Label.Text = "climbs"
	p.X.Min = 0
	p.Legend.Top = true
	p.Legend.Left = false

	n := len(chart.Types)
	if n == 0 {
		p.Title.Text = "no typed climbs"
		return p, nil
	}

	// Most frequent type on top.
	row := make(map[string]int, n)
	names := make([]string, n)
	for i, t := range chart.Types {
		row[t] = n - 1 - i
		names[n-1-i] = t
	}

	offsets := make([]float64, n)
	var labels plotter.XYLabels
	var prev *plotter.BarChart
	for _, grade := range chart.Grades {
		sel := make(plotter.Values, n)
		dim := make(plotter.Values, n)
		for _, pt := range chart.Points {
			if pt.Grade != grade {
				continue
			}
			y := row[pt.Type]
			if pt.IsSelected {
				sel[y] = float64(pt.Count)
			} else {
				dim[y] = float64(pt.Count)
			}
			if pt.Count > 0 && stats.LabelVisible(pt.Count, chart.MaxCount(), barPixels) {
				labels.XYs = append(labels.XYs, plotter.XY{X: offsets[y] + float64(pt.Count)/2, Y: float64(y)})
				labels.Labels = append(labels.Labels, strconv.Itoa(pt.Count))
			}
			offsets[y] += float64(pt.Count)
		}

		base := gradeColors[grade]
		selBars, err := plotter.NewBarChart(sel, vg.Points(14))
		if err != nil {
			return nil, err
		}
		selBars.Horizontal = true
		selBars.Color = base
		selBars.LineStyle.Width = 0
		if !neutral {
			selBars.LineStyle.Color = selectedStroke
			selBars.LineStyle.Width = vg.Points(1)
		}
		if prev != nil {
			selBars.StackOn(prev)
		}

		dimBars, err := plotter.NewBarChart(dim, vg.Points(14))
		if err != nil {
			return nil, err
		}
		dimBars.Horizontal = true
		dimBars.Color = dimmed(base)
		dimBars.LineStyle.Width = 0
		dimBars.StackOn(selBars)
		prev = dimBars

		p.Add(selBars, dimBars)
		p.Legend.Add(string(grade), selBars)
	}

	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	p.NominalY(names...)
	return p, nil
}

// histogramPlot draws the climbs-per-area distribution. Buckets whose
// midpoint falls in [lo, hi] are drawn in the highlight colour.
func histogramPlot(buckets []stats.Bucket, lo, hi float64, highlight bool) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.White
	p.Title.Text = "climbs per area"
	p.X.Label.Text = "climbs"
	p.Y.Label.Text = "areas"

	width := float64(stats.BucketWidth(buckets))
	var normal, marked []plotter.HistogramBin
	for _, b := range buckets {
		bin := plotter.HistogramBin{Min: float64(b.Lower), Max: float64(b.Lower) + width, Weight: float64(b.Count)}
		if highlight && b.InRange(lo, hi) {
			marked = append(marked, bin)
		} else {
			normal = append(normal, bin)
		}
	}
	for _, layer := range []struct {
		bins []plotter.HistogramBin
		fill color.Color
	}{{normal, bucketColor}, {marked, rangeColor}} {
		if len(layer.bins) == 0 {
			continue
		}
		h := &plotter.Histogram{
			Bins:      layer.bins,
			Width:     width,
			FillColor: layer.fill,
			LineStyle: plotter.DefaultLineStyle,
		}
		p.Add(h)
	}
	p.Add(plotter.NewGrid())
	p.Y.Min = 0
	p.Y.Tick.Marker = numTicks{}
	return p
}

// plotSVG renders p to SVG markup.
func plotSVG(p *plot.Plot, width, height int) (string, error) {
	wt, err := p.WriterTo(vg.Points(float64(width)), vg.Points(float64(height)), "svg")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", err
	}
	return stripXMLHeader(buf.String()), nil
}

// stripXMLHeader drops the XML prolog so the SVG can be inlined in HTML.
func stripXMLHeader(svg string) string {
	if i := strings.Index(svg, "<svg"); i > 0 {
		return svg[i:]
	}
	return svg
}

// savePlot writes p to path; the format follows the extension.
func savePlot(p *plot.Plot, path string, width, height int) error {
	return p.Save(vg.Points(float64(width)), vg.Points(float64(height)), path)
}

// pdfPage is one page of a PDF report: a plot followed by lines of text.
type pdfPage struct {
	title string
	plot  *plot.Plot
	lines []string
}

const reportLineHeight = 0.22 * vg.Inch

// renderPDF writes pages to path. Each page holds its plot in the upper half
// and text lines below; overflowing lines continue on further pages.
func renderPDF(path string, pages []pdfPage) error {
	c := vgpdf.New(pageWidth, pageHeight)

	first := true
	for _, pg := range pages {
		if !first {
			c.NextPage()
		}
		first = false

		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
		fillText(area, pg.title, vg.Points(14), area.Min.X, area.Max.Y-vg.Points(14), color.Black)

		y := area.Max.Y - 0.4*vg.Inch
		if pg.plot != nil {
			plotArea := draw.Canvas{
				Canvas: area.Canvas,
				Rectangle: vg.Rectangle{
					Min: vg.Point{X: area.Min.X, Y: y - 5*vg.Inch},
					Max: vg.Point{X: area.Max.X, Y: y},
				},
			}
			pg.plot.Draw(plotArea)
			y -= 5*vg.Inch + 0.3*vg.Inch
		}

		for _, line := range pg.lines {
			if y < area.Min.Y {
				c.NextPage()
				dc = draw.New(c)
				area = draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
				fillText(area, pg.title+" (continued)", vg.Points(10), area.Min.X, area.Max.Y-vg.Points(8), color.Gray{Y: 100})
				y = area.Max.Y - 0.4*vg.Inch
			}
			fillText(area, line, vg.Points(9), area.Min.X, y, color.Black)
			strokeHLine(area, area.Min.X, area.Max.X, y-vg.Points(4), color.Gray{Y: 220})
			y -= reportLineHeight
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type numTicks struct{}

func (numTicks) Ticks(min, max float64) []plot.Tick {
	t := plot.DefaultTicks{}
	ticks := t.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}

func chartTitle(page *parser.Page) string {
	title := strings.TrimSpace(page.Doc.Find("title").First().Text())
	if title == "" && page.URL != nil {
		title = page.URL.String()
	}
	if title == "" {
		return "climb types by grade"
	}
	return fmt.Sprintf("%s - climb types by grade", title)
}
