// internal/report/summary.go
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/util"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	summaryHeadStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	summaryCellStyle  = lipgloss.NewStyle().Padding(0, 1)
	summaryFaintStyle = lipgloss.NewStyle().Faint(true)
)

var verdictAttrs = map[classify.Verdict]color.Attribute{
	classify.Excellent:      color.FgHiGreen,
	classify.Pass:           color.FgGreen,
	classify.MarginalFail:   color.FgYellow,
	classify.Fail:           color.FgRed,
	classify.CannotEvaluate: color.FgHiBlack,
	classify.Unknown:        color.FgMagenta,
}

// Palette colours verdict labels for the terminal.
type Palette struct {
	colors map[classify.Verdict]*color.Color
}

// NewPalette builds a palette. With noColor set labels are plain text; otherwise
// fatih/color decides based on the terminal.
func NewPalette(noColor bool) Palette {
	p := Palette{colors: make(map[classify.Verdict]*color.Color, len(verdictAttrs))}
	for v, attr := range verdictAttrs {
		c := color.New(attr, color.Bold)
		if noColor {
			c.DisableColor()
		}
		p.colors[v] = c
	}
	return p
}

// Verdict returns the coloured verdict name.
func (p Palette) Verdict(v classify.Verdict) string {
	if c, ok := p.colors[v]; ok {
		return c.Sprint(v.String())
	}
	return v.String()
}

func (p Palette) cell(c Cell) string {
	if !c.Colored {
		return c.Text
	}
	return c.Text + " " + p.Verdict(c.Verdict)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return summaryHeadStyle
			}
			return summaryCellStyle
		})
}

// WriteSummary prints the per-record verdict table and the verdict totals per
// category.
func WriteSummary(w io.Writer, doc Document, palette Palette) error {
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render(doc.Title))
	b.WriteString("\n")
	if doc.Source != "" {
		b.WriteString(summaryFaintStyle.Render("Source: " + doc.Source))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	records := newTable("Category", "Test Case", "Kind", "Verdicts")
	for _, cat := range doc.Categories {
		for _, s := range cat.Sections {
			records.Row(cat.Name, util.TruncateRunes(s.Title(), 60), string(s.Record.Kind), SectionVerdicts(s, palette))
		}
	}
	b.WriteString(records.Render())
	b.WriteString("\n\n")

	headers := []string{"Category"}
	for _, v := range classify.Verdicts {
		headers = append(headers, v.String())
	}
	totals := newTable(headers...)
	for _, cat := range doc.Categories {
		totals.Row(tallyRow(cat.Name, cat.Tally)...)
	}
	totals.Row(tallyRow("Total", doc.Tally)...)
	b.WriteString(totals.Render())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func tallyRow(label string, t Tally) []string {
	row := []string{label}
	for _, c := range t.Counts() {
		row = append(row, strconv.Itoa(c.Count))
	}
	return row
}

// SectionVerdicts lists the classified comparisons of a section on one line.
func SectionVerdicts(s Section, palette Palette) string {
	var parts []string
	switch {
	case s.Generic != nil:
		for _, row := range s.Generic.Rows {
			if row.DUT.Colored {
				parts = append(parts, row.Metric+" "+palette.Verdict(row.DUT.Verdict))
			}
		}
	case s.MRAB != nil:
		if s.MRAB.Status.Colored {
			parts = append(parts, "In Call "+palette.Verdict(s.MRAB.Status.Verdict))
		} else if s.MRAB.Status.Text != "" {
			parts = append(parts, s.MRAB.Status.Text)
		}
	case s.Playstore != nil:
		for _, c := range s.Tally.Counts() {
			if c.Count > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", c.Count, palette.Verdict(c.Verdict)))
			}
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// SectionText renders the tables of one section for the terminal.
func SectionText(s Section, palette Palette) string {
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render(s.Title()))
	b.WriteString("\n")
	b.WriteString(summaryFaintStyle.Render("kind: " + string(s.Record.Kind)))
	b.WriteString("\n\n")

	switch {
	case s.Generic != nil:
		t := newTable("Metric", "Statistic", "DUT "+s.Generic.UnitHeader, "REF "+s.Generic.UnitHeader)
		for _, row := range s.Generic.Rows {
			metric := ""
			if row.ShowMetric {
				metric = row.Metric
			}
			t.Row(metric, row.Statistic, palette.cell(row.DUT), row.REF.Text)
		}
		b.WriteString(t.Render())
	case s.Call != nil:
		t := newTable("Device", "Attempts", "Setup (s)", "Success", "Success %", "Failed", "Failed %", "P-Value")
		for _, r := range s.Call.Rows {
			t.Row(r.Device, r.Attempts, r.MeanSetupTime, r.Successes, r.SuccessPercent, r.Failures, r.FailurePercent, r.PValue)
		}
		b.WriteString(summaryFaintStyle.Render(s.Call.CallType + " calls"))
		b.WriteString("\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
		b.WriteString(labeledTable([]string{"Metrics", "P-Value"}, s.Call.PValues))
	case s.MRAB != nil:
		t := newTable("Phase", "Statistic", "DUT (Mbps)", "REF (Mbps)")
		for _, r := range s.MRAB.Rows {
			phase := ""
			if r.ShowGroup {
				phase = r.Category
			}
			t.Row(phase, r.Statistic, palette.cell(r.DUT), r.REF.Text)
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
		status := s.MRAB.Status.Text
		if s.MRAB.Status.Colored {
			status = palette.Verdict(s.MRAB.Status.Verdict)
		}
		b.WriteString("Overall MRAB Case Status (In Call Mean): " + status)
	case s.Voice != nil:
		headers := []string{"Metric"}
		for _, d := range s.Voice.Devices {
			headers = append(headers, "DL "+d)
		}
		for _, d := range s.Voice.Devices {
			headers = append(headers, "UL "+d)
		}
		b.WriteString(labeledTable(headers, s.Voice.Rows))
	case s.Audio != nil:
		b.WriteString(labeledTable(append([]string{"Statistic"}, s.Audio.Devices...), s.Audio.Rows))
	case s.Playstore != nil:
		headers := []string{"Location"}
		for _, size := range s.Playstore.Sizes {
			headers = append(headers, size+" DUT", size+" REF")
		}
		t := newTable(headers...)
		for _, r := range s.Playstore.Rows {
			row := []string{r.Label}
			for i, c := range r.Cells {
				if i%2 == 0 {
					row = append(row, palette.cell(c))
				} else {
					row = append(row, c.Text)
				}
			}
			t.Row(row...)
		}
		b.WriteString(t.Render())
	default:
		b.WriteString("No tables for this test case.")
	}
	b.WriteString("\n")
	return b.String()
}

func labeledTable(headers []string, rows []LabeledRow) string {
	t := newTable(headers...)
	for _, r := range rows {
		t.Row(append([]string{r.Label}, r.Values...)...)
	}
	return t.Render()
}
