package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/bleaustats/config"
	"github.com/zalepa/bleaustats/fetch"
	"github.com/zalepa/bleaustats/parser"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	area, err := os.ReadFile("testdata/area.html")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/apremont":
			w.Write(area)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDashboard(t *testing.T) (http.Handler, string) {
	srv := catalogServer(t)
	d := newDashboard(config.Default(), fetch.New(fetch.Options{}))
	return d.routes(), url.QueryEscape(srv.URL + "/apremont")
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeChart(t *testing.T, rec *httptest.ResponseRecorder) chartResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp chartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDashboardIndex(t *testing.T) {
	h, _ := newTestDashboard(t)
	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/events")
}

func TestDashboardChartAndEvents(t *testing.T) {
	h, area := newTestDashboard(t)

	resp := decodeChart(t, do(t, h, http.MethodGet, "/api/chart?area="+area, ""))
	require.Equal(t, []string{"traverse", "crimpy", "slopers"}, resp.Types)
	require.Equal(t, 5, resp.Total)
	require.Equal(t, 5, resp.Visible)
	require.Empty(t, resp.Selection)

	resp = decodeChart(t, do(t, h, http.MethodPost, "/api/events?area="+area,
		`{"kind":"bar","gradeCategory":"6s","climbType":"crimpy"}`))
	require.Len(t, resp.Selection, 1)
	require.Equal(t, parser.Grade6, resp.Selection[0].Grade)
	require.Equal(t, 2, resp.Visible)

	resp = decodeChart(t, do(t, h, http.MethodPost, "/api/events?area="+area, `{"kind":"axis","climbType":"slopers"}`))
	require.Len(t, resp.Selection, 2)
	require.Equal(t, 3, resp.Visible)

	// The session outlives the request.
	resp = decodeChart(t, do(t, h, http.MethodGet, "/api/chart?area="+area, ""))
	require.Len(t, resp.Selection, 2)

	resp = decodeChart(t, do(t, h, http.MethodPost, "/api/events?area="+area, `{"kind":"reset"}`))
	require.Empty(t, resp.Selection)
	require.Equal(t, 5, resp.Visible)
}

func TestDashboardBadRequests(t *testing.T) {
	h, area := newTestDashboard(t)

	tests := []struct {
		name, method, target, body string
		want                       int
	}{
		{"relative area", http.MethodGet, "/api/chart?area=/apremont", "", http.StatusBadRequest},
		{"unknown kind", http.MethodPost, "/api/events?area=" + area, `{"kind":"drag"}`, http.StatusBadRequest},
		{"bar without type", http.MethodPost, "/api/events?area=" + area, `{"kind":"bar","gradeCategory":"6s"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/events?area=" + area, `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestDashboardMissingArea(t *testing.T) {
	srv := catalogServer(t)
	h := newDashboard(config.Default(), fetch.New(fetch.Options{})).routes()
	rec := do(t, h, http.MethodGet, "/api/chart?area="+url.QueryEscape(srv.URL+"/nowhere"), "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDashboardPageAndSVG(t *testing.T) {
	h, area := newTestDashboard(t)

	rec := do(t, h, http.MethodGet, "/chart.svg?area="+area, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	do(t, h, http.MethodPost, "/api/events?area="+area, `{"kind":"legend","gradeCategory":"7s"}`)
	rec = do(t, h, http.MethodGet, "/page?area="+area, "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#chart svg").Length())

	headings := map[string]string{}
	doc.Find("h4").Each(func(_ int, s *goquery.Selection) {
		headings[strings.TrimSpace(s.Text())] = s.AttrOr("style", "")
	})
	require.Len(t, headings, 3)
	require.Contains(t, headings["6a"], "none")
	require.Contains(t, headings["3b"], "none")
	require.NotContains(t, headings["7a"], "none")
}

func TestDashboardSessionReadsCatalogPage(t *testing.T) {
	srv := catalogServer(t)
	d := newDashboard(config.Default(), fetch.New(fetch.Options{}))

	s, status, err := d.session(context.Background(), srv.URL+"/apremont")
	require.NoError(t, err, "status %d", status)
	require.Len(t, s.climbs, 5)
	require.Len(t, s.headings, 3)

	again, _, err := d.session(context.Background(), srv.URL+"/apremont")
	require.NoError(t, err)
	require.Same(t, s, again)
}

func TestSanitizePageKeepsChartAndVisibility(t *testing.T) {
	d := newDashboard(config.Default(), fetch.New(fetch.Options{}))
	doc := `<main><div class="container">` +
		`<div class="row" id="chart" style="width: 100%"></div>` +
		`<h4 style="display: none">6a</h4>` +
		`<script>alert(1)</script><a href="javascript:alert(1)">x</a>` +
		`</div></main>`

	out, err := d.sanitizePage(doc, `<svg><rect></rect></svg>`)
	require.NoError(t, err)
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "javascript:")
	require.Contains(t, out, "<svg><rect></rect></svg>")
	require.Contains(t, out, "none")
}

func TestEventRequestMapping(t *testing.T) {
	for _, kind := range []string{"bar", "axis", "legend", "empty", "reset"} {
		req := eventRequest{Kind: kind, Grade: parser.Grade6, Type: "crimpy"}
		e, err := req.event()
		require.NoError(t, err, kind)
		require.NotNil(t, e, kind)
	}
}
