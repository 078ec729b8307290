package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/plot"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

var levelColors = map[indicators.Level]string{
	indicators.LevelTop:    "#2ea043",
	indicators.LevelMiddle: "#e6a014",
	indicators.LevelLow:    "#d23232",
}

func chartTitle(q query) string {
	region := q.Scope.Region
	if region == "" {
		region = "all regions"
	}
	return fmt.Sprintf("%s indicators, %s, %s", q.Kind, region, q.Period)
}

// handleIndicatorChart renders the coverage of each indicator as an HTML bar
// chart, one bar per indicator coloured by tier.
func (s *Server) handleIndicatorChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := s.parseQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	resp, err := s.scoreIndicators(r.Context(), q)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	x := make([]string, len(resp.Indicators))
	y := make([]opts.BarData, len(resp.Indicators))
	for i, ind := range resp.Indicators {
		x[i] = ind.Label
		y[i] = opts.BarData{
			Name:      fmt.Sprintf("%s: %d of %d (%s)", ind.Label, ind.Actual, ind.Expected, ind.Tier),
			Value:     ind.Percentage,
			ItemStyle: &opts.ItemStyle{Color: levelColors[ind.Level]},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "ASHA Indicators", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: chartTitle(q), Subtitle: fmt.Sprintf("records=%d workers=%d", resp.Totals.Records, resp.Workers)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Coverage (%)", Min: 0}),
	)
	bar.SetXAxis(x).
		AddSeries("coverage", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCoveragePNG renders the same data as a static PNG for reports.
func (s *Server) handleCoveragePNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := s.parseQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	resp, err := s.scoreIndicators(r.Context(), q)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	p, err := plot.Coverage(chartTitle(q), resp.Indicators)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("plot error: %v", err))
		return
	}
	var buf bytes.Buffer
	if err := plot.WritePNG(&buf, p); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
