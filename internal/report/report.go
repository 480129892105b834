package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/scout/internal/analyzer"
	"github.com/FranksOps/scout/internal/results"
)

// Summary contains aggregated figures about one search run.
type Summary struct {
	RunID           string               `json:"run_id"`
	Query           string               `json:"query"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	Duration        time.Duration        `json:"duration"`
	Retrieved       int                  `json:"retrieved"`
	ReportedTotal   string               `json:"reported_total"`
	Failed          int                  `json:"failed"`
	TotalDetections int                  `json:"total_detections"`
	DetectionsBySrc map[string]int       `json:"detections_by_src"`
	StatusCodes     map[int]int          `json:"status_codes"`
	TotalBytes      int64                `json:"total_bytes"`
	KeywordHits     []analyzer.TermMatch `json:"keyword_hits"`
	SearchError     string               `json:"search_error,omitempty"`
}

// GenerateSummary aggregates a result set. A nil set yields an empty summary.
func GenerateSummary(set *results.Set) Summary {
	s := Summary{
		StatusCodes:     make(map[int]int),
		DetectionsBySrc: make(map[string]int),
		ReportedTotal:   "0",
	}
	if set == nil {
		return s
	}

	s.RunID = set.ID
	s.Query = set.Query
	s.StartTime = set.StartedAt
	s.EndTime = set.FinishedAt
	if !s.EndTime.IsZero() {
		s.Duration = s.EndTime.Sub(s.StartTime)
	}
	if set.ReportedTotal != "" {
		s.ReportedTotal = set.ReportedTotal
	}
	s.SearchError = set.SearchError

	m := analyzer.NewMatcher(set.Keywords)
	for _, e := range set.Entries {
		s.Retrieved++
		if e.Failed() {
			s.Failed++
		}
		if e.DetectedBot {
			s.TotalDetections++
			s.DetectionsBySrc[e.DetectionSrc]++
		}
		if e.StatusCode > 0 {
			s.StatusCodes[e.StatusCode]++
		}
		s.TotalBytes += int64(e.Bytes)
		if !e.Failed() {
			m.Add(e.Title + "\n" + e.Content)
		}
	}
	s.KeywordHits = m.Matches()

	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report json: %w", err)
	}
	return nil
}

const textTmpl = `Scout Search Summary
--------------------
Query:         {{.Query}}
Run:           {{.RunID}}
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
{{- if .SearchError}}
Search Error:  {{.SearchError}}
{{- end}}
Found {{.Retrieved}} results (search engine reports {{.ReportedTotal}})
Failed Pages:  {{.Failed}}
Total Bytes:   {{.TotalBytes}} bytes

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Detections: {{.TotalDetections}}
{{- range $src, $count := .DetectionsBySrc}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}

Keyword Hits:
{{- range .KeywordHits}}
  {{.Term}}: {{.Count}} in {{.Entries}} results
{{- else}}
  None
{{- end}}
`

var textReport = template.Must(template.New("textReport").Parse(textTmpl))

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	if err := textReport.Execute(w, summary); err != nil {
		return fmt.Errorf("report text: %w", err)
	}
	return nil
}

const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Scout Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .error { color: #b00; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; vertical-align: top; }
  th { background: #eaeaea; }
  tr.failed td { color: #b00; }
</style>
</head>
<body>
  <h1>Scout Search Report</h1>
  <p><strong>Query:</strong> {{.Summary.Query}}</p>
  <p><strong>Time:</strong> {{.Summary.StartTime.Format "2006-01-02 15:04:05"}} to {{.Summary.EndTime.Format "2006-01-02 15:04:05"}} ({{.Summary.Duration}})</p>
  {{- if .Summary.SearchError}}
  <p class="error"><strong>Search failed:</strong> {{.Summary.SearchError}}</p>
  {{- end}}

  <div class="stat-card">
    <div>Retrieved</div>
    <div class="stat-val">{{.Summary.Retrieved}}</div>
  </div>
  <div class="stat-card">
    <div>Engine Reports</div>
    <div class="stat-val">{{.Summary.ReportedTotal}}</div>
  </div>
  <div class="stat-card">
    <div>Failed</div>
    <div class="stat-val">{{.Summary.Failed}}</div>
  </div>
  <div class="stat-card">
    <div>Detections</div>
    <div class="stat-val" style="color: {{if gt .Summary.TotalDetections 0}}red{{else}}green{{end}};">{{.Summary.TotalDetections}}</div>
  </div>

  <h3>Detections By Source</h3>
  <table>
    <tr><th>Source</th><th>Count</th></tr>
    {{- range $src, $count := .Summary.DetectionsBySrc}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Keyword Hits</h3>
  <table>
    <tr><th>Keyword</th><th>Occurrences</th><th>Results</th></tr>
    {{- range .Summary.KeywordHits}}
    <tr><td>{{.Term}}</td><td>{{.Count}}</td><td>{{.Entries}}</td></tr>
    {{- else}}
    <tr><td colspan="3">None</td></tr>
    {{- end}}
  </table>

  <h3>Results</h3>
  <table>
    <tr><th>No.</th><th>Title</th><th>URL</th><th>Content</th></tr>
    {{- range .Entries}}
    <tr{{if .Failed}} class="failed"{{end}}><td>{{.No}}</td><td>{{.Title}}</td><td><a href="{{.URL}}">{{.URL}}</a></td><td>{{.Content}}</td></tr>
    {{- else}}
    <tr><td colspan="4">No results</td></tr>
    {{- end}}
  </table>
</body>
</html>
`

var htmlReport = htmltemplate.Must(htmltemplate.New("htmlReport").Parse(htmlTmpl))

// WriteHTML writes an HTML report with the summary and the result table.
// Page titles and content are escaped.
func WriteHTML(w io.Writer, summary Summary, entries []results.Entry) error {
	data := struct {
		Summary Summary
		Entries []results.Entry
	}{summary, entries}

	if err := htmlReport.Execute(w, data); err != nil {
		return fmt.Errorf("report html: %w", err)
	}
	return nil
}
