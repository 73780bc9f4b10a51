package cmd

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zalepa/bleaustats/areas"
)

type areaRecord struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Measured  bool     `json:"measured"`
	NumClimbs int      `json:"numClimbs"`
	TopTypes  []string `json:"topTypes"`
	Error     string   `json:"error,omitempty"`
}

func areaRecords(outcomes []areas.Outcome) []areaRecord {
	records := make([]areaRecord, 0, len(outcomes))
	for _, o := range outcomes {
		r := areaRecord{Name: o.Link.Name, URL: o.Link.Href, TopTypes: []string{}}
		if o.OK() {
			r.Measured = true
			r.NumClimbs = o.Metric.NumClimbs
			r.TopTypes = o.Metric.TopTypes.Types()
		} else if o.Err != nil {
			r.Error = o.Err.Error()
		}
		records = append(records, r)
	}
	return records
}

// writeMetricsJSON writes one record per area, excluded areas included.
func writeMetricsJSON(path string, outcomes []areas.Outcome) error {
	data, err := json.MarshalIndent(areaRecords(outcomes), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeMetricsCSV(path string, outcomes []areas.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeMetricsCSV(f, outcomes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeMetricsCSV(out io.Writer, outcomes []areas.Outcome) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"Area", "URL", "Measured", "NumClimbs", "TopTypes", "Error"}); err != nil {
		return err
	}
	for _, r := range areaRecords(outcomes) {
		row := []string{
			r.Name, r.URL, strconv.FormatBool(r.Measured),
			strconv.Itoa(r.NumClimbs), strings.Join(r.TopTypes, "; "), r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
