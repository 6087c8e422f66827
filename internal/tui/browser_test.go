// internal/tui/browser_test.go
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwiater/fieldreport/internal/extract"
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/mwiater/fieldreport/internal/resultstree"
)

func testDocument(t *testing.T) report.Document {
	t.Helper()
	root, err := resultstree.Parse([]byte(`{
		"LTE DP": {
			"FTP DL": {"DUT": {"Throughput": {"Mean": 100}}, "REF": {"Throughput": {"Mean": 90}}},
			"FTP UL": {"DUT": {"Throughput": {"Mean": 10}}, "REF": {"Throughput": {"Mean": 90}}}
		}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return report.Build(extract.Extract(root), report.Options{Title: "Drive"})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestUpdate walks from the list into a detail view and back.
func TestUpdate(t *testing.T) {
	m := newModel(testDocument(t), report.NewPalette(true))
	if m.state != viewList {
		t.Fatalf("expected list view initially, got %v", m.state)
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("expected size 120x40, got %dx%d", m.width, m.height)
	}
	if m.viewport.Height != 36 {
		t.Errorf("expected viewport height 36, got %d", m.viewport.Height)
	}

	next, _ = m.Update(key("enter"))
	m = next.(*model)
	if m.state != viewDetail {
		t.Fatalf("expected detail view after enter, got %v", m.state)
	}
	if m.selected == nil || m.selected.Title() != "LTE DP - FTP DL" {
		t.Fatalf("expected first section selected, got %+v", m.selected)
	}

	next, _ = m.Update(key("esc"))
	m = next.(*model)
	if m.state != viewList || m.selected != nil {
		t.Fatalf("expected list view after esc, got %v", m.state)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("expected quit command for q")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("expected quit command for ctrl+c")
	}
}

func TestView(t *testing.T) {
	m := newModel(testDocument(t), report.NewPalette(true))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	if !strings.Contains(view, "Drive (2 test cases)") {
		t.Errorf("expected list title in view, got %q", view)
	}

	m.Update(key("enter"))
	view = m.View()
	for _, want := range []string{"Drive", "LTE DP - FTP DL", "100.00 Excellent", "esc back"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in detail view, got %q", want, view)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	m := newModel(report.Document{Title: "Empty"}, report.NewPalette(true))
	if view := m.View(); !strings.Contains(view, "No test cases found.") {
		t.Errorf("expected empty notice, got %q", view)
	}
}

func TestItemDescription(t *testing.T) {
	m := newModel(testDocument(t), report.NewPalette(true))
	it, ok := m.list.Items()[1].(item)
	if !ok {
		t.Fatalf("unexpected item type %T", m.list.Items()[1])
	}
	if it.Title() != "LTE DP - FTP UL" {
		t.Errorf("unexpected title %q", it.Title())
	}
	if !strings.Contains(it.Description(), "generic") || !strings.Contains(it.Description(), "Throughput Fail") {
		t.Errorf("unexpected description %q", it.Description())
	}
}
