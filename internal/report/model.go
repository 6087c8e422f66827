// internal/report/model.go
// Package report turns extracted test cases into the printable HTML report
// and the terminal summary.
package report

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/coverage"
	"github.com/mwiater/fieldreport/internal/extract"
	"github.com/mwiater/fieldreport/internal/rsrp"
	"github.com/mwiater/fieldreport/internal/util"
)

const (
	mrabStationaryPrefix = "5G VoNR MRAB Stationary"
	mrabStationaryGroup  = "5G AUTO DP"
)

var (
	genericMetrics = []string{"Throughput", "Jitter", "Error Ratio", "Web Page Load Time"}
	pingMetrics    = []string{"Ping RTT"}

	fullStats = []string{"Mean", "Standard Deviation", "Minimum", "Maximum"}
	meanOnly  = []string{"Mean"}

	// pingStatKeys maps display statistics onto the keys ping blocks use.
	pingStatKeys = map[string]string{
		"Mean":               "avg",
		"Standard Deviation": "std_dev",
		"Minimum":            "min",
		"Maximum":            "max",
	}
)

func statsFor(metric string) []string {
	switch metric {
	case "Jitter", "Error Ratio":
		return meanOnly
	}
	return fullStats
}

func unitFor(metric string) string {
	switch metric {
	case "Jitter", "Ping RTT":
		return "ms"
	case "Error Ratio":
		return "%"
	case "Web Page Load Time":
		return "s"
	}
	return ""
}

// Options carries everything besides the records that appears in the report.
type Options struct {
	Title       string
	Source      string
	Digest      string
	GeneratedAt time.Time
	RSRP        []rsrp.Series
	Coverage    []coverage.Test
}

// VerdictCount is the number of classified cells with one verdict.
type VerdictCount struct {
	Verdict classify.Verdict
	Count   int
}

// Tally counts verdicts and reports them in a fixed order.
type Tally map[classify.Verdict]int

// Counts returns every verdict with its count, in report order.
func (t Tally) Counts() []VerdictCount {
	out := make([]VerdictCount, 0, len(classify.Verdicts))
	for _, v := range classify.Verdicts {
		out = append(out, VerdictCount{Verdict: v, Count: t[v]})
	}
	return out
}

// Total is the number of classified cells.
func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

func (t Tally) add(other Tally) {
	for v, c := range other {
		t[v] += c
	}
}

// Cell is a rendered value with an optional verdict colour.
type Cell struct {
	Text    string
	Verdict classify.Verdict
	Colored bool
}

// Class returns the colour class of the cell, empty when uncoloured.
func (c Cell) Class() string {
	if !c.Colored {
		return ""
	}
	return c.Verdict.CSSClass()
}

// StatRow is one metric statistic of a generic or ping test case.
type StatRow struct {
	Metric     string
	ShowMetric bool
	Statistic  string
	DUT        Cell
	REF        Cell
}

// GenericView is the statistics table of a generic or ping test case.
type GenericView struct {
	Ping       bool
	UnitHeader string
	Rows       []StatRow
	ChartLabel string
	HasMeans   bool
	DUTMean    float64
	REFMean    float64
	Axis       Axis
	Chart      template.HTML
}

// CallRow is one device of a call-performance table.
type CallRow struct {
	Device         string
	Attempts       string
	MeanSetupTime  string
	Successes      string
	SuccessPercent string
	Failures       string
	FailurePercent string
	PValue         string
}

// CallView is the call-performance table plus its p-value table. Retention
// only appears among the p-values for MO calls.
type CallView struct {
	CallType string
	Rows     []CallRow
	PValues  []LabeledRow
}

// MRABRow is one phase statistic of an MRAB comparison.
type MRABRow struct {
	Category  string
	ShowGroup bool
	Statistic string
	DUT       Cell
	REF       Cell
}

// MRABView is the MRAB statistics table.
type MRABView struct {
	Rows          []MRABRow
	OverallStatus string
	Status        Cell
}

// LabeledRow is a row label followed by plain cells.
type LabeledRow struct {
	Label  string
	Values []string
}

// VoiceView is the MOS table of a voice-quality test case.
type VoiceView struct {
	Codec   string
	Devices []string
	Rows    []LabeledRow
}

// AudioView is the audio delay table.
type AudioView struct {
	Devices []string
	Rows    []LabeledRow
}

// PlaystoreRow is one location of the play-store table.
type PlaystoreRow struct {
	Location string
	Label    string
	Cells    []Cell
}

// PlaystoreView is the play-store download table; Cells alternate DUT and REF
// per file size.
type PlaystoreView struct {
	Sizes []string
	Rows  []PlaystoreRow
}

// Section is one test case in the report.
type Section struct {
	Record    extract.TestCaseRecord
	Generic   *GenericView
	Call      *CallView
	MRAB      *MRABView
	Voice     *VoiceView
	Audio     *AudioView
	Playstore *PlaystoreView
	Tally     Tally
}

// Title is the record name, or a placeholder for the root record.
func (s Section) Title() string {
	if s.Record.Name == "" {
		return "(root)"
	}
	return s.Record.Name
}

// Anchor is a stable HTML id for the section.
func (s Section) Anchor() string {
	return anchor(s.Title())
}

// Category is a group of sections sharing the first name segment.
type Category struct {
	Name     string
	Sections []Section
	Tally    Tally
}

// Anchor is a stable HTML id for the category.
func (c Category) Anchor() string { return anchor("cat " + c.Name) }

// RSRPView is one run of RSRP samples with its chart.
type RSRPView struct {
	Series  rsrp.Series
	Summary rsrp.Summary
	Chart   template.HTML
}

// CoverageView is one coverage test.
type CoverageView struct {
	Name    string
	Tables  []coverage.Table
	Markers []coverage.Marker
}

// Document is the full report view model.
type Document struct {
	Title       string
	Source      string
	Digest      string
	GeneratedAt time.Time
	Categories  []Category
	Tally       Tally
	RSRP        []RSRPView
	Coverage    []CoverageView
	RecordCount int
}

// Build converts records into the report view model. It does no I/O; charts
// are attached when the document is rendered.
func Build(records []extract.TestCaseRecord, opts Options) Document {
	doc := Document{
		Title:       opts.Title,
		Source:      opts.Source,
		Digest:      opts.Digest,
		GeneratedAt: opts.GeneratedAt,
		Tally:       Tally{},
		RecordCount: len(records),
	}

	for _, group := range Group(records) {
		cat := Category{Name: group.Name, Tally: Tally{}}
		for _, rec := range group.Records {
			section := BuildSection(rec)
			cat.Tally.add(section.Tally)
			cat.Sections = append(cat.Sections, section)
		}
		doc.Tally.add(cat.Tally)
		doc.Categories = append(doc.Categories, cat)
	}

	for _, series := range opts.RSRP {
		doc.RSRP = append(doc.RSRP, RSRPView{Series: series, Summary: series.Summary()})
	}
	for _, test := range opts.Coverage {
		doc.Coverage = append(doc.Coverage, CoverageView{
			Name:    test.Name,
			Tables:  coverage.Tables(test),
			Markers: coverage.Markers(test),
		})
	}
	return doc
}

// RecordGroup is the records of one display category.
type RecordGroup struct {
	Name    string
	Records []extract.TestCaseRecord
}

// GroupName returns the display category of rec.
func GroupName(rec extract.TestCaseRecord) string {
	if strings.HasPrefix(rec.Name, mrabStationaryPrefix) {
		return mrabStationaryGroup
	}
	return rec.Category()
}

// Group splits records into categories in order of first appearance. Within
// the 5G AUTO DP group the stationary MRAB cases come last.
func Group(records []extract.TestCaseRecord) []RecordGroup {
	index := make(map[string]int)
	var groups []RecordGroup
	trailing := make(map[string][]extract.TestCaseRecord)

	for _, rec := range records {
		name := GroupName(rec)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, RecordGroup{Name: name})
		}
		if strings.HasPrefix(rec.Name, mrabStationaryPrefix) {
			trailing[name] = append(trailing[name], rec)
			continue
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	for i := range groups {
		groups[i].Records = append(groups[i].Records, trailing[groups[i].Name]...)
	}
	return groups
}

// BuildSection renders the tables of a single record.
func BuildSection(rec extract.TestCaseRecord) Section {
	s := Section{Record: rec, Tally: Tally{}}
	switch rec.Kind {
	case extract.KindGeneric, extract.KindPing:
		s.Generic = buildGeneric(rec, s.Tally)
	case extract.KindCallPerformance:
		s.Call = buildCall(rec.Call)
	case extract.KindMRAB:
		s.MRAB = buildMRAB(rec.MRAB, s.Tally)
	case extract.KindVoiceQuality:
		s.Voice = buildVoice(rec.Voice)
	case extract.KindAudioDelay:
		s.Audio = buildAudio(rec.AudioDelay)
	case extract.KindPlaystore:
		s.Playstore = buildPlaystore(rec.Playstore, s.Tally)
	}
	return s
}

// UnitHeader is the unit shown in the DUT/REF column headers.
func UnitHeader(rec extract.TestCaseRecord) string {
	switch {
	case rec.Kind == extract.KindPing:
		return "(ms)"
	case strings.Contains(rec.Name, "Web-Kepler"):
		return "(s)"
	}
	return "(Mbps)"
}

func buildGeneric(rec extract.TestCaseRecord, tally Tally) *GenericView {
	ping := rec.Kind == extract.KindPing
	view := &GenericView{Ping: ping, UnitHeader: UnitHeader(rec)}

	metrics := genericMetrics
	if ping {
		metrics = pingMetrics
	}
	for _, metric := range metrics {
		kind, _ := classify.MetricKindFor(metric)
		unit := unitFor(metric)
		first := true
		for _, stat := range statsFor(metric) {
			key := stat
			if ping {
				key = pingStatKeys[stat]
			}
			dut, ref := rec.DUT.Value(metric, key), rec.REF.Value(metric, key)
			if dut == nil && ref == nil {
				continue
			}
			row := StatRow{
				Metric:     metric,
				ShowMetric: first,
				Statistic:  stat,
				DUT:        Cell{Text: util.FormatOptional(dut, 2, unit)},
				REF:        Cell{Text: util.FormatOptional(ref, 2, unit)},
			}
			first = false
			if stat == "Mean" {
				if verdict, ok := classify.ClassifyOptional(dut, ref, kind); ok {
					row.DUT.Verdict, row.DUT.Colored = verdict, true
					row.REF.Verdict, row.REF.Colored = verdict, true
					tally[verdict]++
				}
			}
			view.Rows = append(view.Rows, row)
		}
	}

	chartMetric, chartStat := "Throughput", "Mean"
	if ping {
		chartMetric, chartStat = "Ping RTT", pingStatKeys["Mean"]
	}
	dut, ref := rec.DUT.Value(chartMetric, chartStat), rec.REF.Value(chartMetric, chartStat)
	view.ChartLabel = chartMetric + " " + view.UnitHeader
	view.HasMeans = dut != nil || ref != nil
	view.DUTMean = valueOrZero(dut)
	view.REFMean = valueOrZero(ref)
	view.Axis = BarAxis(view.DUTMean, view.REFMean)
	return view
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatCount(v *float64) string {
	if v == nil {
		return util.NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func buildCall(call *extract.CallPerformance) *CallView {
	if call == nil {
		return nil
	}
	row := func(device string, c extract.CallCounters, pValue string) CallRow {
		return CallRow{
			Device:         device,
			Attempts:       formatCount(c.TotalAttempts),
			MeanSetupTime:  util.FormatOptional(c.MeanSetupTime, 2, ""),
			Successes:      formatCount(c.TotalInitiationSuccesses),
			SuccessPercent: strconv.FormatFloat(c.SuccessRate(), 'f', 2, 64) + "%",
			Failures:       formatCount(c.TotalInitiationFailures),
			FailurePercent: strconv.FormatFloat(c.FailureRate(), 'f', 2, 64) + "%",
			PValue:         pValue,
		}
	}

	initiation := strconv.FormatFloat(call.InitiationPValue, 'f', 3, 64)
	retention := strconv.FormatFloat(call.RetentionPValue, 'f', 3, 64)
	pValues := []LabeledRow{{Label: "Call Initiation", Values: []string{initiation}}}
	if call.ShowsRetention() {
		pValues = append(pValues, LabeledRow{Label: "Call Retention", Values: []string{retention}})
	}
	return &CallView{
		CallType: call.CallType,
		Rows: []CallRow{
			row("DUT", call.DUT, initiation),
			row("REF", call.REF, retention),
		},
		PValues: pValues,
	}
}

func buildMRAB(m *extract.MRABComparison, tally Tally) *MRABView {
	if m == nil {
		return nil
	}
	view := &MRABView{OverallStatus: m.OverallStatus}
	for _, category := range extract.MRABCategories {
		for i, stat := range extract.MRABStatistics {
			dut, ref := m.DUT.Get(category, stat), m.REF.Get(category, stat)
			row := MRABRow{
				Category:  category,
				ShowGroup: i == 0,
				Statistic: stat,
				DUT:       Cell{Text: util.FormatOptional(dut, 2, "")},
				REF:       Cell{Text: util.FormatOptional(ref, 2, "")},
			}
			if stat == "Mean" {
				if verdict, ok := classify.ClassifyOptional(dut, ref, classify.Throughput); ok {
					row.DUT.Verdict, row.DUT.Colored = verdict, true
					row.REF.Verdict, row.REF.Colored = verdict, true
				}
			}
			view.Rows = append(view.Rows, row)
		}
	}

	view.Status = Cell{Text: m.InCallStatus}
	if dut, ref := m.DUT.Get("In Call", "Mean"), m.REF.Get("In Call", "Mean"); dut != nil && ref != nil {
		view.Status.Verdict, view.Status.Colored = m.InCallVerdict, true
		tally[m.InCallVerdict]++
	}
	return view
}

var voiceRows = []struct {
	label string
	pick  func(extract.MOSStats) *float64
	kind  string
}{
	{"MOS Average", func(s extract.MOSStats) *float64 { return s.Mean }, ""},
	{"MOS Stdev", func(s extract.MOSStats) *float64 { return s.StdDev }, ""},
	{"Maximum MOS", func(s extract.MOSStats) *float64 { return s.Max }, ""},
	{"Count", func(s extract.MOSStats) *float64 { return s.Count }, "count"},
	{"% MOS < 3.0", func(s extract.MOSStats) *float64 { return s.PercentLessThan3 }, "percent"},
	{"% MOS < 2.0", func(s extract.MOSStats) *float64 { return s.PercentLessThan2 }, "percent"},
}

func buildVoice(v *extract.VoiceQuality) *VoiceView {
	if v == nil {
		return nil
	}
	view := &VoiceView{Codec: v.Codec}
	var refs, duts []extract.VoiceDevice
	for _, d := range v.Devices {
		if strings.HasPrefix(d.Label, "REF") {
			refs = append(refs, d)
		} else {
			duts = append(duts, d)
		}
	}
	ordered := append(refs, duts...)
	for _, d := range ordered {
		view.Devices = append(view.Devices, d.Label)
	}

	for _, r := range voiceRows {
		row := LabeledRow{Label: r.label}
		for _, direction := range []func(extract.VoiceDevice) extract.MOSStats{
			func(d extract.VoiceDevice) extract.MOSStats { return d.DL },
			func(d extract.VoiceDevice) extract.MOSStats { return d.UL },
		} {
			for _, d := range ordered {
				row.Values = append(row.Values, formatMOS(r.pick(direction(d)), r.kind))
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func formatMOS(v *float64, kind string) string {
	if v == nil {
		return util.NotAvailable
	}
	switch kind {
	case "count":
		return strconv.FormatFloat(*v, 'f', 0, 64)
	case "percent":
		return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

var audioRows = []struct {
	label string
	pick  func(extract.DelayStats) float64
}{
	{"Mean (ms)", func(s extract.DelayStats) float64 { return s.Mean }},
	{"Std Dev", func(s extract.DelayStats) float64 { return s.StdDev }},
	{"Minimum (ms)", func(s extract.DelayStats) float64 { return s.Min }},
	{"Maximum (ms)", func(s extract.DelayStats) float64 { return s.Max }},
	{"Counts", func(s extract.DelayStats) float64 { return s.Occurrences }},
}

func buildAudio(a *extract.AudioDelay) *AudioView {
	if a == nil {
		return nil
	}
	view := &AudioView{Devices: extract.AudioDelayDevices}
	for i, r := range audioRows {
		row := LabeledRow{Label: r.label}
		for _, device := range extract.AudioDelayDevices {
			value := r.pick(a.Devices[device])
			if i == len(audioRows)-1 {
				row.Values = append(row.Values, strconv.FormatFloat(value, 'f', 0, 64))
				continue
			}
			row.Values = append(row.Values, strconv.FormatFloat(value, 'f', 2, 64))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func buildPlaystore(p *extract.PlaystoreDownload, tally Tally) *PlaystoreView {
	if p == nil {
		return nil
	}
	view := &PlaystoreView{Sizes: extract.PlaystoreSizes}
	for _, location := range extract.PlaystoreLocations {
		row := PlaystoreRow{Location: location, Label: extract.PlaystoreLocationLabel(location)}
		for _, size := range extract.PlaystoreSizes {
			cell := p.Cell(location, size)
			dut := Cell{Text: util.FormatOptional(cell.DUT, 2, "")}
			ref := Cell{Text: util.FormatOptional(cell.REF, 2, "")}
			if verdict, ok := cell.Verdict(); ok {
				dut.Verdict, dut.Colored = verdict, true
				ref.Verdict, ref.Colored = verdict, true
				tally[verdict]++
			}
			row.Cells = append(row.Cells, dut, ref)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func anchor(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
