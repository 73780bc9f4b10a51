package cmd

import (
	"context"
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/microcosm-cc/bluemonday"

	"github.com/zalepa/bleaustats/config"
	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/selection"
	"github.com/zalepa/bleaustats/stats"
)

//go:embed web.html
var htmlContent embed.FS

const sessionTTL = 30 * time.Minute

type chartResponse struct {
	Title     string                 `json:"title"`
	Grades    []parser.GradeCategory `json:"grades"`
	Types     []string               `json:"types"`
	Points    []stats.ChartDataPoint `json:"points"`
	MaxCount  int                    `json:"maxCount"`
	Selection []selection.Filter     `json:"selection"`
	Visible   int                    `json:"visible"`
	Total     int                    `json:"total"`
}

type eventRequest struct {
	Kind  string               `json:"kind"`
	Grade parser.GradeCategory `json:"gradeCategory"`
	Type  string               `json:"climbType"`
}

type areaSummary struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	NumClimbs int      `json:"numClimbs"`
	TopTypes  []string `json:"topTypes"`
	Summary   string   `json:"summary"`
	Error     string   `json:"error,omitempty"`
}

type overviewResponse struct {
	Areas    []areaSummary  `json:"areas"`
	Measured int            `json:"measured"`
	Buckets  []stats.Bucket `json:"buckets"`
}

// dashboard serves the interactive chart of one area at a time. Every area
// gets its own session, kept until it has been idle for sessionTTL.
type dashboard struct {
	cfg       config.Config
	getter    fetch.Getter
	// policy cleans remote markup before /page serves it back.
	policy    *bluemonday.Policy
	sessions  *expirable.LRU[string, *areaSession]
	overviews *expirable.LRU[string, overviewResponse]
}

func newDashboard(cfg config.Config, getter fetch.Getter) *dashboard {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()
	policy.AllowElements("main")
	policy.AllowStyles("display").MatchingEnum("block", "none").Globally()
	policy.AllowStyles("width", "margin-top", "color").Globally()
	return &dashboard{
		cfg:       cfg,
		getter:    getter,
		policy:    policy,
		sessions:  expirable.NewLRU[string, *areaSession](64, nil, sessionTTL),
		overviews: expirable.NewLRU[string, overviewResponse](8, nil, sessionTTL),
	}
}

// Web implements the "web" subcommand.
func Web(args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	common := addCommonFlags(fs)
	port := fs.String("port", "8080", "HTTP server port")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bleaustats web [--port 8080]\n\nStart an interactive web dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(reorderArgs(args))

	cfg, err := common.setup()
	if err != nil {
		fatal("error loading config: %v", err)
	}
	ctx := context.Background()
	getter, release, err := newGetter(ctx, cfg)
	if err != nil {
		fatal("error opening page source: %v", err)
	}
	defer release()

	addr := ":" + *port
	fmt.Printf("serving on http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, newDashboard(cfg, getter).routes()); err != nil {
		fatal("server error: %v", err)
	}
}

func (d *dashboard) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		data, _ := htmlContent.ReadFile("web.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})
	r.Get("/api/chart", d.handleChart)
	r.Post("/api/events", d.handleEvent)
	r.Get("/api/overview", d.handleOverview)
	r.Get("/chart.svg", d.handleSVG)
	r.Get("/page", d.handlePage)
	return r
}

// session returns the session of the area page at rawURL, fetching and
// parsing it on first use.
func (d *dashboard) session(ctx context.Context, rawURL string) (*areaSession, int, error) {
	if s, ok := d.sessions.Get(rawURL); ok {
		return s, 0, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, http.StatusBadRequest, fmt.Errorf("area must be an absolute URL, got %q", rawURL)
	}
	body, err := d.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, http.StatusBadGateway, err
	}
	page, err := parser.ReadPage(body, u, d.cfg.Selectors)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	s, err := newAreaSession(page, d.cfg.TopTypes)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	d.sessions.Add(rawURL, s)
	slog.DebugContext(ctx, "area session opened", "url", rawURL, "climbs", len(s.climbs))
	return s, 0, nil
}

func (d *dashboard) lookupSession(w http.ResponseWriter, r *http.Request) *areaSession {
	s, status, err := d.session(r.Context(), r.URL.Query().Get("area"))
	if err != nil {
		slog.WarnContext(r.Context(), "area unavailable", "url", r.URL.Query().Get("area"), "err", err)
		http.Error(w, err.Error(), status)
		return nil
	}
	return s
}

func (d *dashboard) chartResponse(s *areaSession) chartResponse {
	snap := s.snapshot()
	return chartResponse{
		Title:     s.title,
		Grades:    snap.chart.Grades,
		Types:     snap.chart.Types,
		Points:    snap.chart.Points,
		MaxCount:  snap.chart.MaxCount(),
		Selection: snap.state.Filters,
		Visible:   snap.visible,
		Total:     len(s.climbs),
	}
}

func (d *dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	s := d.lookupSession(w, r)
	if s == nil {
		return
	}
	writeJSON(w, d.chartResponse(s))
}

func (d *dashboard) handleEvent(w http.ResponseWriter, r *http.Request) {
	s := d.lookupSession(w, r)
	if s == nil {
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode event: %v", err), http.StatusBadRequest)
		return
	}
	e, err := req.event()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(e)
	writeJSON(w, d.chartResponse(s))
}

// event maps a click on the dashboard chart to a selection event.
func (req eventRequest) event() (selection.Event, error) {
	switch req.Kind {
	case "bar":
		if req.Grade == "" || req.Type == "" {
			return nil, fmt.Errorf("bar event needs gradeCategory and climbType")
		}
		return selection.ClickBar{Grade: req.Grade, Type: req.Type}, nil
	case "axis":
		if req.Type == "" {
			return nil, fmt.Errorf("axis event needs climbType")
		}
		return selection.ClickAxisLabel{Type: req.Type}, nil
	case "legend":
		if req.Grade == "" {
			return nil, fmt.Errorf("legend event needs gradeCategory")
		}
		return selection.ClickLegendEntry{Grade: req.Grade}, nil
	case "empty":
		return selection.ClickEmptyArea{}, nil
	case "reset":
		return selection.Reset{}, nil
	}
	return nil, fmt.Errorf("unknown event kind %q", req.Kind)
}

func (d *dashboard) handleSVG(w http.ResponseWriter, r *http.Request) {
	s := d.lookupSession(w, r)
	if s == nil {
		return
	}
	svg, err := s.renderChart(d.cfg.ChartWidth, d.cfg.ChartHeight, d.cfg.BarPixels())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}

func (d *dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	s := d.lookupSession(w, r)
	if s == nil {
		return
	}
	svg, err := s.renderChart(d.cfg.ChartWidth, d.cfg.ChartHeight, d.cfg.BarPixels())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doc, err := s.annotatedHTML("")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	clean, err := d.sanitizePage(doc, svg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(clean))
}

// sanitizePage cleans an annotated catalog page, then fills the chart
// container with svg, which is generated locally and would not survive the
// policy.
func (d *dashboard) sanitizePage(doc, svg string) (string, error) {
	out, err := goquery.NewDocumentFromReader(strings.NewReader(d.policy.Sanitize(doc)))
	if err != nil {
		return "", err
	}
	out.Find("#" + chartContainerID).First().SetHtml(svg)
	return goquery.OuterHtml(out.Selection)
}

func (d *dashboard) handleOverview(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("index")
	if resp, ok := d.overviews.Get(rawURL); ok {
		writeJSON(w, resp)
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		http.Error(w, fmt.Sprintf("index must be an absolute URL, got %q", rawURL), http.StatusBadRequest)
		return
	}
	body, err := d.getter.Get(r.Context(), rawURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	page, err := parser.ReadPage(body, u, d.cfg.Selectors)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	res, err := measureOverview(r.Context(), page, d.getter, d.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := overviewResponse{Measured: len(res.Metrics), Buckets: res.Buckets}
	for _, o := range res.Outcomes {
		a := areaSummary{Name: o.Link.Name, URL: o.Link.Href}
		if o.OK() {
			a.NumClimbs = o.Metric.NumClimbs
			a.TopTypes = o.Metric.TopTypes.Types()
			a.Summary = o.Metric.Summary()
		} else {
			a.Error = o.Err.Error()
		}
		resp.Areas = append(resp.Areas, a)
	}
	d.overviews.Add(rawURL, resp)
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
