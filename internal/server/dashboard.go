package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"VolScope/internal/collector"
	"VolScope/internal/model"
	"VolScope/internal/report"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"date":    func(r model.TableRow) string { return r.Date.Format(dateLayout) },
	"price":   report.Price,
	"percent": report.Percent,
}).ParseFS(templateFS, "templates/dashboard.html"))

var lookbackChoices = []collector.Lookback{
	collector.Lookback1Month,
	collector.Lookback3Months,
	collector.Lookback6Months,
	collector.Lookback1Year,
	collector.Lookback2Years,
	collector.Lookback5Years,
}

type dashboardView struct {
	Title     string
	Ticker    string
	Lookback  string
	Lookbacks []collector.Lookback
	Raw       bool
	Error     string
	Report    *model.Report
	Chart     svgChart
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ticker := strings.TrimSpace(q.Get("ticker"))
	if ticker == "" {
		ticker = s.cfg.DefaultTicker
	}

	view := dashboardView{
		Title:     s.cfg.Report.Title,
		Ticker:    collector.NormalizeSymbol(ticker),
		Lookback:  q.Get("lookback"),
		Lookbacks: lookbackChoices,
		Raw:       q.Get("raw") == "1" || q.Get("raw") == "on" || q.Get("raw") == "true",
	}
	if view.Title == "" {
		view.Title = report.DefaultTitle
	}
	if view.Lookback == "" {
		view.Lookback = string(s.collector.Lookback)
	}

	status := http.StatusOK
	rep, code, err := s.analyze(r, ticker)
	if err != nil {
		status = code
		view.Error = report.UserMessage(err)
	} else {
		view.Report = rep
		view.Chart = buildChart(rep.Chart)
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, view); err != nil {
		s.log.Error("render dashboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
