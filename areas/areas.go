// Package areas computes the per-area metrics shown on the areas index: how
// many typed climbs each area has and its most frequent climb types.
package areas

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/stats"
)

// Metric summarises one area page.
type Metric struct {
	Link      parser.AreaLink
	NumClimbs int
	TopTypes  stats.Ranking
}

// Summary is the line of text shown under the area on the index.
func (m Metric) Summary() string {
	return fmt.Sprintf("%d - %s", m.NumClimbs, strings.Join(m.TopTypes.Types(), ", "))
}

// FetchError marks an area that could not be fetched or parsed. Such areas
// are left out of the aggregate.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("area %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Outcome is the settled result for one area: Metric on success, Err
// otherwise.
type Outcome struct {
	Link   parser.AreaLink
	Metric *Metric
	Err    error
}

// OK reports whether the area was measured.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Metric != nil
}

// Options controls how area pages are read.
type Options struct {
	Selectors parser.Selectors
	TopTypes  int
}

// Measure extracts the metric of one area page.
func Measure(body string, link parser.AreaLink, opts Options) (Metric, error) {
	base, err := url.Parse(link.Href)
	if err != nil {
		return Metric{}, err
	}
	page, err := parser.ReadPage(body, base, opts.Selectors)
	if err != nil {
		return Metric{}, err
	}
	climbs, err := page.AreaClimbs()
	if err != nil {
		return Metric{}, err
	}

	groups := stats.GroupTypesByGrade(climbs)
	numTyped := 0
	for _, c := range climbs {
		if len(c.Types) > 0 {
			numTyped++
		}
	}
	return Metric{
		Link:      link,
		NumClimbs: numTyped,
		TopTypes:  stats.TopN(groups, opts.TopTypes),
	}, nil
}

type indexedOutcome struct {
	index int
	Outcome
}

// Collect fetches and measures every area in parallel and waits until all of
// them have settled. Failures are kept as outcomes rather than aborting the
// run. The result is in link order.
func Collect(ctx context.Context, getter fetch.Getter, links []parser.AreaLink, opts Options) []Outcome {
	resultCh := make(chan indexedOutcome, len(links))
	var wg sync.WaitGroup

	for i, link := range links {
		wg.Add(1)
		go func(idx int, l parser.AreaLink) {
			defer wg.Done()
			resultCh <- indexedOutcome{index: idx, Outcome: measureArea(ctx, getter, l, opts)}
		}(i, link)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	ordered := make([]Outcome, len(links))
	for r := range resultCh {
		ordered[r.index] = r.Outcome
	}
	return ordered
}

func measureArea(ctx context.Context, getter fetch.Getter, link parser.AreaLink, opts Options) Outcome {
	body, err := getter.Get(ctx, link.Href)
	if err != nil {
		slog.WarnContext(ctx, "area excluded", "url", link.Href, "err", err)
		return Outcome{Link: link, Err: &FetchError{URL: link.Href, Err: err}}
	}
	m, err := Measure(body, link, opts)
	if err != nil {
		slog.WarnContext(ctx, "area excluded", "url", link.Href, "err", err)
		return Outcome{Link: link, Err: &FetchError{URL: link.Href, Err: err}}
	}
	slog.DebugContext(ctx, "area measured", "url", link.Href, "climbs", m.NumClimbs)
	return Outcome{Link: link, Metric: &m}
}

// Succeeded keeps the metrics of areas that were measured.
func Succeeded(outcomes []Outcome) []Metric {
	var metrics []Metric
	for _, o := range outcomes {
		if o.OK() {
			metrics = append(metrics, *o.Metric)
		}
	}
	return metrics
}

// Failed keeps the errors of excluded areas.
func Failed(outcomes []Outcome) []error {
	var errs []error
	for _, o := range outcomes {
		if !o.OK() {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Histogram buckets the climb counts of metrics.
func Histogram(metrics []Metric, buckets int) []stats.Bucket {
	values := make([]int, len(metrics))
	for i, m := range metrics {
		values[i] = m.NumClimbs
	}
	return stats.Histogram(values, buckets)
}
