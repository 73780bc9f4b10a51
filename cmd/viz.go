package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/zalepa/bleaustats/areas"
	"github.com/zalepa/bleaustats/stats"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	// Grade names are case sensitive ("6s", not "6S").
	t.Style().Format.Header = text.FormatDefault
	t.SetOutputMirror(w)
	return t
}

// renderChartTable prints the chart as a type x grade grid. Counts outside
// the selection are shown in parentheses.
func renderChartTable(w io.Writer, title string, chart stats.Chart) {
	fmt.Fprintln(w, title)
	if len(chart.Types) == 0 {
		fmt.Fprintln(w, "(no typed climbs)")
		return
	}

	t := newTable(w)
	header := table.Row{"Type"}
	for _, g := range chart.Grades {
		header = append(header, string(g))
	}
	header = append(header, "Total")
	t.AppendHeader(header)

	for _, typ := range chart.Types {
		row := table.Row{typ}
		total := 0
		for _, g := range chart.Grades {
			pt, _ := chart.Segment(g, typ)
			total += pt.Count
			row = append(row, formatCell(pt))
		}
		row = append(row, formatInt(int64(total)))
		t.AppendRow(row)
	}
	t.Render()
}

func formatCell(pt stats.ChartDataPoint) string {
	if pt.Count == 0 {
		return ""
	}
	if !pt.IsSelected {
		return "(" + strconv.Itoa(pt.Count) + ")"
	}
	return strconv.Itoa(pt.Count)
}

// renderOverviewTable prints one row per area in index order, including the
// areas that were excluded.
func renderOverviewTable(w io.Writer, outcomes []areas.Outcome) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Area", "Climbs", "Top types"})
	for _, o := range outcomes {
		name := o.Link.Name
		if name == "" {
			name = o.Link.Href
		}
		if !o.OK() {
			t.AppendRow(table.Row{name, "- -", "excluded"})
			continue
		}
		t.AppendRow(table.Row{name, formatInt(int64(o.Metric.NumClimbs)), strings.Join(o.Metric.TopTypes.Types(), ", ")})
	}
	t.Render()
}

// renderHistogram prints the bucket counts as a sparkline. Buckets inside
// [lo, hi] are marked beneath it when highlight is set.
func renderHistogram(w io.Writer, buckets []stats.Bucket, lo, hi float64, highlight bool) {
	if len(buckets) == 0 {
		fmt.Fprintln(w, "(no areas measured)")
		return
	}
	vals := make([]float64, len(buckets))
	total := 0
	for i, b := range buckets {
		vals[i] = float64(b.Count)
		total += b.Count
	}
	width := stats.BucketWidth(buckets)
	last := buckets[len(buckets)-1]

	fmt.Fprintf(w, "Climbs per area: %d areas, %d buckets of %s climbs\n\n",
		total, len(buckets), formatInt(int64(width)))
	fmt.Fprintf(w, "%8s │%s\n", formatCompact(maxOf(vals)), sparkline(vals))
	fmt.Fprintf(w, "%8s └%s\n", "", strings.Repeat("─", len(buckets)))
	if highlight {
		var sb strings.Builder
		inRange := 0
		for _, b := range buckets {
			if b.InRange(lo, hi) {
				sb.WriteRune('^')
				inRange += b.Count
			} else {
				sb.WriteRune(' ')
			}
		}
		fmt.Fprintf(w, "%8s  %s\n", "", sb.String())
		fmt.Fprintf(w, "%d areas between %s and %s climbs\n", inRange, formatNum(lo), formatNum(hi))
	}
	fmt.Fprintf(w, "%8s  0 .. %s\n", "", formatInt(int64(last.Lower+width)))
}

func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	// Find min/max ignoring NaN.
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return strings.Repeat(" ", len(values))
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		idx := 0
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		} else {
			idx = n / 2
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "- -"
	}
	if v == float64(int64(v)) && math.Abs(v) < 1e15 {
		return formatInt(int64(v))
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatInt(v int64) string {
	s := strconv.FormatInt(v, 10)
	if v < 0 {
		return "-" + addCommas(s[1:])
	}
	return addCommas(s)
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var sb strings.Builder
	pre := n % 3
	if pre > 0 {
		sb.WriteString(s[:pre])
		if pre < n {
			sb.WriteByte(',')
		}
	}
	for i := pre; i < n; i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < n {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}

// reorderArgs moves positional arguments to the end so that Go's flag package
// can parse all flags regardless of where a positional argument appears.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			// Consume the next arg as the flag's value unless it looks like a flag itself.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !strings.Contains(args[i], "=") && !boolFlags[strings.TrimLeft(args[i], "-")] {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

// boolFlags take no value, so the argument after them is positional.
var boolFlags = map[string]bool{
	"v":       true,
	"browser": true,
}

// parseRange reads "lo:hi" into a closed interval.
func parseRange(s string) (lo, hi float64, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: want lo:hi", s)
	}
	if lo, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if hi, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}
