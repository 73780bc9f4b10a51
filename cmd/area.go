package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zalepa/bleaustats/config"
	"github.com/zalepa/bleaustats/parser"
)

// Area implements the "area" subcommand.
func Area(args []string) {
	fs := flag.NewFlagSet("area", flag.ExitOnError)
	common := addCommonFlags(fs)
	sel := fs.String("select", "", `selection terms, e.g. "6s:crimpy,:traverse,7s"`)
	top := fs.Int("top", 0, "number of climb types to chart (default from config)")
	base := fs.String("base", "", "base URL for links when reading a local file")
	svgOut := fs.String("svg", "", "write the chart as SVG (or PNG by extension)")
	pdfOut := fs.String("pdf", "", "write a PDF report")
	htmlOut := fs.String("html", "", "write the annotated page")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bleaustats area <url|file> [flags]

Chart the climb types per grade of one area page.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Selection terms:
  6s:crimpy   one bar segment
  :traverse   every segment of a type
  7s          every segment of a grade

Examples:
  bleaustats area https://bleau.info/cuvier
  bleaustats area cuvier.html --select "6s:crimpy,7s" --html out.html
  bleaustats area https://bleau.info/cuvier --pdf cuvier.pdf
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
	if *top > 0 {
		cfg.TopTypes = *top
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

	if err := runArea(page, cfg, *sel, areaOutputs{svg: *svgOut, pdf: *pdfOut, html: *htmlOut}); err != nil {
		fatal("error: %v", err)
	}
}

type areaOutputs struct {
	svg, pdf, html string
}

func runArea(page *parser.Page, cfg config.Config, sel string, out areaOutputs) error {
	s, err := newAreaSession(page, cfg.TopTypes)
	if err != nil {
		return err
	}
	events, err := parseSelection(sel)
	if err != nil {
		return err
	}
	for _, e := range events {
		s.dispatch(e)
	}

	title := chartTitle(page)
	chart := s.chartView()
	renderChartTable(os.Stdout, title, chart)
	shown := s.visibleClimbs()
	fmt.Printf("showing %d of %d climbs\n", len(shown), len(s.climbs))

	if out.svg != "" {
		p, err := gradeChartPlot(chart, s.current().Empty(), cfg.BarPixels())
		if err != nil {
			return err
		}
		if err := savePlot(p, out.svg, cfg.ChartWidth, cfg.ChartHeight); err != nil {
			return fmt.Errorf("write %s: %w", out.svg, err)
		}
		fmt.Printf("wrote %s\n", out.svg)
	}

	if out.html != "" {
		svg, err := s.renderChart(cfg.ChartWidth, cfg.ChartHeight, cfg.BarPixels())
		if err != nil {
			return err
		}
		doc, err := s.annotatedHTML(svg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.html, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out.html, err)
		}
		fmt.Printf("wrote %s\n", out.html)
	}

	if out.pdf != "" {
		p, err := gradeChartPlot(chart, s.current().Empty(), cfg.BarPixels())
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(shown))
		for _, c := range shown {
			lines = append(lines, fmt.Sprintf("%-8s %s", c.Grade, strings.Join(c.Types, ", ")))
		}
		if err := writeReport(out.pdf, []pdfPage{{title: title, plot: p, lines: lines}}); err != nil {
			return err
		}
	}
	return nil
}
