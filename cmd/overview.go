package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zalepa/bleaustats/areas"
	"github.com/zalepa/bleaustats/config"
	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/stats"
)

// Overview implements the "overview" subcommand.
func Overview(args []string) {
	fs := flag.NewFlagSet("overview", flag.ExitOnError)
	common := addCommonFlags(fs)
	base := fs.String("base", "", "base URL for area links when reading a local file")
	buckets := fs.Int("buckets", 0, "histogram buckets (default from config)")
	rangeFlag := fs.String("range", "", `highlight areas with lo..hi climbs, e.g. "100:300"`)
	svgOut := fs.String("svg", "", "write the histogram as SVG (or PNG by extension)")
	pdfOut := fs.String("pdf", "", "write a PDF report")
	htmlOut := fs.String("html", "", "write the annotated index page")
	jsonOut := fs.String("json", "", "write per-area metrics as JSON")
	csvOut := fs.String("csv", "", "write per-area metrics as CSV")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bleaustats overview <url|file> [flags]

Measure every area linked from the areas index: number of typed climbs and
most frequent climb types, plus the distribution of climbs per area.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  bleaustats overview https://bleau.info/areas
  bleaustats overview areas.html --base https://bleau.info/areas --range 100:400
  bleaustats overview https://bleau.info/areas --html areas.html --pdf areas.pdf
  bleaustats overview https://bleau.info/areas --json areas.json --csv areas.csv
`)
	}
	fs.Parse(reorderArgs(args))
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := common.setup()
	if err != nil {
		fatal("error loading config: %v", err)
	}
	if *buckets > 0 {
		cfg.Buckets = *buckets
	}
	var hl highlight
	if *rangeFlag != "" {
		lo, hi, err := parseRange(*rangeFlag)
		if err != nil {
			fatal("invalid --range: %v", err)
		}
		hl = highlight{lo: lo, hi: hi, on: true}
	}

	ctx := context.Background()
	getter, release, err := newGetter(ctx, cfg)
	if err != nil {
		fatal("error opening page source: %v", err)
	}
	defer release()

	page, err := loadPage(ctx, getter, fs.Arg(0), *base, cfg.Selectors)
	if err != nil {
		fatal("error loading %s: %v", fs.Arg(0), err)
	}

	out := overviewOutputs{svg: *svgOut, pdf: *pdfOut, html: *htmlOut, json: *jsonOut, csv: *csvOut}
	if err := runOverview(ctx, page, getter, cfg, hl, out); err != nil {
		fatal("error: %v", err)
	}
}

type highlight struct {
	lo, hi float64
	on     bool
}

type overviewOutputs struct {
	svg, pdf, html, json, csv string
}

// overviewResult is everything measured for an areas index.
type overviewResult struct {
	Outcomes []areas.Outcome
	Metrics  []areas.Metric
	Buckets  []stats.Bucket
}

// measureOverview collects every area linked from page and buckets the
// climb counts of the ones that could be measured.
func measureOverview(ctx context.Context, page *parser.Page, getter fetch.Getter, cfg config.Config) (overviewResult, error) {
	links, err := page.AreaLinks()
	if err != nil {
		return overviewResult{}, err
	}
	outcomes := areas.Collect(ctx, getter, links, areas.Options{
		Selectors: cfg.Selectors,
		TopTypes:  cfg.OverviewTopTypes,
	})
	metrics := areas.Succeeded(outcomes)
	return overviewResult{
		Outcomes: outcomes,
		Metrics:  metrics,
		Buckets:  areas.Histogram(metrics, cfg.Buckets),
	}, nil
}

// annotateOverview adds the metrics line under every measured area and puts
// the chart markup at the top of the page.
func annotateOverview(page *parser.Page, res overviewResult, chartMarkup string) (string, error) {
	for _, o := range res.Outcomes {
		if o.OK() && o.Link.Node != nil {
			parser.AppendMetrics(o.Link.Node, o.Metric.Summary())
		}
	}
	container, err := page.PrependChartContainer(chartContainerID)
	if err != nil {
		return "", err
	}
	parser.SetInnerHTML(container, chartMarkup)
	return page.HTML()
}

func runOverview(ctx context.Context, page *parser.Page, getter fetch.Getter, cfg config.Config, hl highlight, out overviewOutputs) error {
	res, err := measureOverview(ctx, page, getter, cfg)
	if err != nil {
		return err
	}

	renderOverviewTable(os.Stdout, res.Outcomes)
	fmt.Printf("measured %d of %d areas\n\n", len(res.Metrics), len(res.Outcomes))
	renderHistogram(os.Stdout, res.Buckets, hl.lo, hl.hi, hl.on)

	if out.svg != "" {
		p := histogramPlot(res.Buckets, hl.lo, hl.hi, hl.on)
		if err := savePlot(p, out.svg, cfg.ChartWidth, cfg.ChartHeight); err != nil {
			return fmt.Errorf("write %s: %w", out.svg, err)
		}
		fmt.Printf("wrote %s\n", out.svg)
	}

	if out.html != "" {
		svg, err := plotSVG(histogramPlot(res.Buckets, hl.lo, hl.hi, hl.on), cfg.ChartWidth, cfg.ChartHeight)
		if err != nil {
			return err
		}
		doc, err := annotateOverview(page, res, svg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.html, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out.html, err)
		}
		fmt.Printf("wrote %s\n", out.html)
	}

	if out.json != "" {
		if err := writeMetricsJSON(out.json, res.Outcomes); err != nil {
			return fmt.Errorf("write %s: %w", out.json, err)
		}
		fmt.Printf("wrote %s\n", out.json)
	}
	if out.csv != "" {
		if err := writeMetricsCSV(out.csv, res.Outcomes); err != nil {
			return fmt.Errorf("write %s: %w", out.csv, err)
		}
		fmt.Printf("wrote %s\n", out.csv)
	}

	if out.pdf != "" {
		lines := make([]string, 0, len(res.Outcomes))
		for _, o := range res.Outcomes {
			if o.OK() {
				lines = append(lines, fmt.Sprintf("%-32s %s", o.Link.Name, o.Metric.Summary()))
			} else {
				lines = append(lines, fmt.Sprintf("%-32s excluded: %v", o.Link.Name, o.Err))
			}
		}
		pages := []pdfPage{{
			title: fmt.Sprintf("Climbs per area (%d of %d areas measured)", len(res.Metrics), len(res.Outcomes)),
			plot:  histogramPlot(res.Buckets, hl.lo, hl.hi, hl.on),
			lines: lines,
		}}
		if err := writeReport(out.pdf, pages); err != nil {
			return err
		}
	}
	return nil
}
