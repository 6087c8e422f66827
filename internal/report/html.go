// internal/report/html.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/mwiater/fieldreport/internal/util"
)

var reportFuncs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05 MST")
	},
	"fixed": func(decimals int, v float64) string {
		return fmt.Sprintf("%.*f", decimals, v)
	},
}

var reportTemplate = template.Must(template.New("field-report").Funcs(reportFuncs).Parse(reportTemplateHTML))

// RenderHTML renders doc, charts included, as a standalone HTML page.
func RenderHTML(doc Document) (string, error) {
	AttachCharts(&doc)
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// WriteHTML renders doc and writes it to path.
func WriteHTML(path string, doc Document) error {
	page, err := RenderHTML(doc)
	if err != nil {
		return err
	}
	if err := util.WriteFile(path, []byte(page)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body {
      margin: 0;
      font-family: system-ui, -apple-system, "Segoe UI", Roboto, sans-serif;
      background-color: var(--light);
      color: var(--text);
    }
    header {
      background-color: var(--primary);
      color: var(--light);
      padding: 1rem 2rem;
    }
    header small { color: #CBD5E1; }
    main { padding: 1rem 2rem; }
    nav.toc ul { columns: 2; }
    .card {
      border: 1px solid var(--border);
      background-color: var(--background);
      border-radius: 0.375rem;
      padding: 1rem;
      margin-bottom: 1rem;
    }
    .card h3 { margin-top: 0; font-size: 1.05rem; }
    .kind { color: var(--secondary); font-size: 0.8rem; font-weight: normal; }
    .row { display: flex; flex-wrap: wrap; gap: 1rem; align-items: flex-start; }
    table { border-collapse: collapse; font-size: 0.875rem; }
    th, td { border: 1px solid var(--border); padding: 0.25rem 0.5rem; text-align: right; }
    th { background-color: var(--light); }
    td.label, th.label { text-align: left; }
    .bg-performance-excellent { background-color: #BBF7D0; }
    .bg-performance-pass { background-color: #DCFCE7; }
    .bg-performance-marginal-fail { background-color: #FEF3C7; }
    .bg-performance-fail { background-color: #FECACA; }
    .bg-performance-cannot-evaluate { background-color: #E2E8F0; }
    .bg-performance-unknown { background-color: #F1F5F9; }
    .chart svg { max-width: 100%; height: auto; }
    @media print {
      body { background-color: #FFFFFF; }
      header { background-color: #FFFFFF; color: #000000; border-bottom: 2px solid #000000; }
      nav.toc { display: none; }
      .card { break-inside: avoid; border-color: #999999; }
      section.category { break-before: page; }
      * { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
    }
  </style>
</head>
<body>
<header>
  <h1>{{ .Title }}</h1>
  <small>{{ with .Source }}Source: {{ . }} {{ end }}{{ with .Digest }}&middot; sha256 {{ . }} {{ end }}{{ with timestamp .GeneratedAt }}&middot; generated {{ . }}{{ end }}</small>
</header>
<main>
  <section class="card" id="summary">
    <h2>Summary</h2>
    <p>{{ .RecordCount }} test cases in {{ len .Categories }} categories, {{ .Tally.Total }} classified comparisons.</p>
    <table>
      <thead>
        <tr>
          <th class="label">Category</th>
          {{- range .Tally.Counts }}<th class="{{ .Verdict.CSSClass }}">{{ .Verdict }}</th>{{ end }}
        </tr>
      </thead>
      <tbody>
        {{- range .Categories }}
        <tr>
          <td class="label"><a href="#{{ .Anchor }}">{{ .Name }}</a></td>
          {{- range .Tally.Counts }}<td>{{ .Count }}</td>{{ end }}
        </tr>
        {{- end }}
        <tr>
          <th class="label">Total</th>
          {{- range .Tally.Counts }}<th>{{ .Count }}</th>{{ end }}
        </tr>
      </tbody>
    </table>
  </section>

  <nav class="toc card">
    <h2>Contents</h2>
    <ul>
      {{- range .Categories }}
      <li><a href="#{{ .Anchor }}">{{ .Name }}</a> ({{ len .Sections }})</li>
      {{- end }}
      {{- if .RSRP }}<li><a href="#rsrp">RSRP</a></li>{{ end }}
      {{- if .Coverage }}<li><a href="#coverage">Coverage</a></li>{{ end }}
    </ul>
  </nav>

  {{- range .Categories }}
  <section class="category" id="{{ .Anchor }}">
    <h2>{{ .Name }}</h2>
    {{- range .Sections }}
    <div class="card" id="{{ .Anchor }}">
      <h3>{{ .Title }} <span class="kind">{{ .Record.Kind }}</span></h3>
      {{- with .Generic }}{{ template "generic" . }}{{ end }}
      {{- with .Call }}{{ template "call" . }}{{ end }}
      {{- with .MRAB }}{{ template "mrab" . }}{{ end }}
      {{- with .Voice }}{{ template "voice" . }}{{ end }}
      {{- with .Audio }}{{ template "audio" . }}{{ end }}
      {{- with .Playstore }}{{ template "playstore" . }}{{ end }}
    </div>
    {{- end }}
  </section>
  {{- end }}

  {{- if .RSRP }}
  <section class="category" id="rsrp">
    <h2>RSRP</h2>
    {{- range .RSRP }}
    <div class="card">
      <h3>Run {{ .Series.Run }}</h3>
      <div class="row">
        <div class="chart">{{ .Chart }}</div>
        <table>
          <thead><tr><th class="label">Column</th><th>Samples</th><th>Mean</th><th>Minimum</th><th>Maximum</th></tr></thead>
          <tbody>
            <tr><td class="label">PC2</td><td>{{ .Summary.PC2.Count }}</td><td>{{ fixed 2 .Summary.PC2.Mean }}</td><td>{{ fixed 2 .Summary.PC2.Min }}</td><td>{{ fixed 2 .Summary.PC2.Max }}</td></tr>
            <tr><td class="label">PC3</td><td>{{ .Summary.PC3.Count }}</td><td>{{ fixed 2 .Summary.PC3.Mean }}</td><td>{{ fixed 2 .Summary.PC3.Min }}</td><td>{{ fixed 2 .Summary.PC3.Max }}</td></tr>
          </tbody>
        </table>
      </div>
    </div>
    {{- end }}
  </section>
  {{- end }}

  {{- if .Coverage }}
  <section class="category" id="coverage">
    <h2>Coverage</h2>
    {{- range .Coverage }}
    <div class="card">
      <h3>{{ .Name }}</h3>
      {{- range .Tables }}
      <h4>{{ .Event.Title }}</h4>
      <table>
        <thead>
          <tr><th class="label">Device</th>{{ range .Runs }}<th>{{ . }}</th>{{ end }}<th>Average</th></tr>
        </thead>
        <tbody>
          {{- range .Rows }}
          <tr><td class="label">{{ .Device }}</td>{{ range .Runs }}<td>{{ .String }}</td>{{ end }}<td>{{ .Average.String }}</td></tr>
          {{- end }}
        </tbody>
      </table>
      {{- end }}
      {{- if .Markers }}
      <h4>Event locations</h4>
      <table>
        <thead><tr><th class="label">Device</th><th>Run</th><th class="label">Event</th><th>Latitude</th><th>Longitude</th><th>Distance (km)</th></tr></thead>
        <tbody>
          {{- range .Markers }}
          <tr><td class="label">{{ .Device }}</td><td>{{ .Run }}</td><td class="label">{{ .Event }}</td><td>{{ fixed 6 .Lat }}</td><td>{{ fixed 6 .Lon }}</td><td>{{ .DistanceText }}</td></tr>
          {{- end }}
        </tbody>
      </table>
      {{- end }}
    </div>
    {{- end }}
  </section>
  {{- end }}
</main>
</body>
</html>

{{ define "generic" -}}
<div class="row">
  <table>
    <thead>
      <tr><th class="label">Metric</th><th class="label">Statistic</th><th>DUT {{ .UnitHeader }}</th><th>REF {{ .UnitHeader }}</th></tr>
    </thead>
    <tbody>
      {{- range .Rows }}
      <tr>
        <td class="label">{{ if .ShowMetric }}{{ .Metric }}{{ end }}</td>
        <td class="label">{{ .Statistic }}</td>
        <td class="{{ .DUT.Class }}">{{ .DUT.Text }}</td>
        <td class="{{ .REF.Class }}">{{ .REF.Text }}</td>
      </tr>
      {{- else }}
      <tr><td class="label" colspan="4">No comparable statistics</td></tr>
      {{- end }}
    </tbody>
  </table>
  <div class="chart">{{ .Chart }}</div>
</div>
{{- end }}

{{ define "call" -}}
<table>
  <caption>{{ .CallType }} calls</caption>
  <thead>
    <tr>
      <th class="label">Device</th><th>Connection Attempts</th><th>Mean Setup Time (s)</th>
      <th>Successful Initiations</th><th>Successful Initiations (%)</th>
      <th>Failed Initiations</th><th>Failed Initiations (%)</th><th>P-Value</th>
    </tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr>
      <td class="label">{{ .Device }}</td><td>{{ .Attempts }}</td><td>{{ .MeanSetupTime }}</td>
      <td>{{ .Successes }}</td><td>{{ .SuccessPercent }}</td>
      <td>{{ .Failures }}</td><td>{{ .FailurePercent }}</td><td>{{ .PValue }}</td>
    </tr>
    {{- end }}
  </tbody>
</table>
<table class="pvalues">
  <caption>P-Value Table</caption>
  <thead>
    <tr><th class="label">Metrics</th><th>P-Value</th></tr>
  </thead>
  <tbody>
    {{- range .PValues }}
    <tr><td class="label">{{ .Label }}</td>{{ range .Values }}<td>{{ . }}</td>{{ end }}</tr>
    {{- end }}
  </tbody>
</table>
{{- end }}

{{ define "mrab" -}}
<table>
  <thead>
    <tr><th class="label">Phase</th><th class="label">Statistic</th><th>DUT (Mbps)</th><th>REF (Mbps)</th></tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr>
      <td class="label">{{ if .ShowGroup }}{{ .Category }}{{ end }}</td>
      <td class="label">{{ .Statistic }}</td>
      <td class="{{ .DUT.Class }}">{{ .DUT.Text }}</td>
      <td class="{{ .REF.Class }}">{{ .REF.Text }}</td>
    </tr>
    {{- end }}
    <tr>
      <th class="label" colspan="2">Overall MRAB Case Status (In Call Mean)</th>
      <td colspan="2" class="{{ .Status.Class }}">{{ .Status.Text }}</td>
    </tr>
    {{- with .OverallStatus }}
    <tr><th class="label" colspan="2">Overall MRAB Status</th><td colspan="2">{{ . }}</td></tr>
    {{- end }}
  </tbody>
</table>
{{- end }}

{{ define "voice" -}}
<table>
  {{- with .Codec }}<caption>Codec: {{ . }}</caption>{{ end }}
  <thead>
    <tr><th class="label" rowspan="2">Metric</th><th colspan="{{ len .Devices }}">Downlink</th><th colspan="{{ len .Devices }}">Uplink</th></tr>
    <tr>{{ range .Devices }}<th>{{ . }}</th>{{ end }}{{ range .Devices }}<th>{{ . }}</th>{{ end }}</tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr><td class="label">{{ .Label }}</td>{{ range .Values }}<td>{{ . }}</td>{{ end }}</tr>
    {{- end }}
  </tbody>
</table>
{{- end }}

{{ define "audio" -}}
<table>
  <thead>
    <tr><th class="label">Statistic</th>{{ range .Devices }}<th>{{ . }}</th>{{ end }}</tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr><td class="label">{{ .Label }}</td>{{ range .Values }}<td>{{ . }}</td>{{ end }}</tr>
    {{- end }}
  </tbody>
</table>
{{- end }}

{{ define "playstore" -}}
<table>
  <thead>
    <tr><th class="label" rowspan="2">Location</th>{{ range .Sizes }}<th colspan="2">{{ . }}</th>{{ end }}</tr>
    <tr>{{ range .Sizes }}<th>DUT (Mbps)</th><th>REF (Mbps)</th>{{ end }}</tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr><td class="label">{{ .Label }}</td>{{ range .Cells }}<td class="{{ .Class }}">{{ .Text }}</td>{{ end }}</tr>
    {{- end }}
  </tbody>
</table>
{{- end }}
`
