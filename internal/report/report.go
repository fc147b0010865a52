package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/quoteforge/quoteforge/internal/domain"
)

// WriteJSON writes the report as indented JSON to path
func WriteJSON(path string, r *domain.RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadJSON loads a previously written report
func ReadJSON(path string) (*domain.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r domain.RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}

// WriteHTML renders the HTML report to path
func WriteHTML(path string, r *domain.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	return RenderHTML(f, r)
}

// RenderHTML writes the HTML rendering of a run report. Renders an explicit
// empty state for runs with zero records so a filtered-to-nothing run is
// distinguishable from a broken report.
func RenderHTML(w io.Writer, r *domain.RunReport) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"fmtDuration": fmtDuration,
		"fmtTime":     fmtTime,
		"fmtRate":     fmtRate,
		"pct":         pct,
	}).Parse(htmlReport)
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}
	if err := tmpl.Execute(w, r); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

func fmtRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// pct renders part's share of total as a bare percentage number, usable in
// both text and width styles
func pct(part, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
}

const htmlReport = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Quote Flow Run {{.RunID}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #24292f; }
  h1 { font-size: 1.4rem; }
  .meta { color: #57606a; font-size: 0.9rem; margin-bottom: 1.5rem; }
  .counters { display: flex; gap: 1rem; margin-bottom: 1.5rem; }
  .counter { border: 1px solid #d0d7de; border-radius: 6px; padding: 0.75rem 1.25rem; text-align: center; }
  .counter .num { font-size: 1.6rem; font-weight: 600; display: block; }
  .counter .share { color: #57606a; font-size: 0.75rem; display: block; }
  .passed .num { color: #1a7f37; }
  .failed .num { color: #cf222e; }
  .skipped .num { color: #9a6700; }
  .proportion { display: flex; height: 10px; border-radius: 5px; overflow: hidden; background: #d0d7de; margin-bottom: 1.5rem; }
  .proportion .seg-passed { background: #1a7f37; }
  .proportion .seg-failed { background: #cf222e; }
  .proportion .seg-skipped { background: #d4a72c; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border-bottom: 1px solid #d0d7de; padding: 0.5rem 0.75rem; text-align: left; font-size: 0.9rem; }
  th { background: #f6f8fa; }
  .status { font-weight: 600; text-transform: uppercase; font-size: 0.75rem; }
  .status.passed { color: #1a7f37; }
  .status.failed { color: #cf222e; }
  .status.skipped { color: #9a6700; }
  .error { color: #cf222e; font-family: ui-monospace, monospace; font-size: 0.8rem; white-space: pre-wrap; }
  .empty { color: #57606a; font-style: italic; padding: 2rem 0; }
</style>
</head>
<body>
<h1>Quote Flow Run</h1>
<div class="meta">
  Run {{.RunID}}{{if .ClientID}} &middot; client {{.ClientID}}{{end}}<br>
  Started {{fmtTime .StartedAt}} &middot; completed {{fmtTime .CompletedAt}}
</div>

<div class="counters">
  <div class="counter"><span class="num">{{.Summary.Total}}</span>total</div>
  <div class="counter passed"><span class="num">{{.Summary.Passed}}</span>passed<span class="share">{{pct .Summary.Passed .Summary.Total}}%</span></div>
  <div class="counter failed"><span class="num">{{.Summary.Failed}}</span>failed<span class="share">{{pct .Summary.Failed .Summary.Total}}%</span></div>
  <div class="counter skipped"><span class="num">{{.Summary.Skipped}}</span>skipped<span class="share">{{pct .Summary.Skipped .Summary.Total}}%</span></div>
  <div class="counter"><span class="num">{{fmtRate .Summary.PassRate}}</span>pass rate</div>
  <div class="counter"><span class="num">{{fmtDuration .Summary.Duration}}</span>duration</div>
</div>

{{if .Summary.Total}}
<div class="proportion">
  <span class="seg-passed" style="width: {{pct .Summary.Passed .Summary.Total}}%"></span>
  <span class="seg-failed" style="width: {{pct .Summary.Failed .Summary.Total}}%"></span>
  <span class="seg-skipped" style="width: {{pct .Summary.Skipped .Summary.Total}}%"></span>
</div>
{{end}}

{{if .Records}}
<table>
  <thead>
    <tr><th>Scenario</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
  </thead>
  <tbody>
  {{range .Records}}
    <tr>
      <td>{{.Name}}</td>
      <td><span class="status {{.Status}}">{{.Status}}</span></td>
      <td>{{fmtDuration .Duration}}</td>
      <td>{{if .Error}}<span class="error">{{.Error}}</span>{{end}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{else}}
<div class="empty">No scenarios were executed in this run.</div>
{{end}}
</body>
</html>
`
