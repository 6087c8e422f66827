// internal/tui/browser.go
// Package tui is an interactive terminal browser over the report sections.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/fieldreport/internal/report"
)

// viewState is the screen currently shown.
type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	headerHeight = 2
	footerHeight = 2
)

var (
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle        = lipgloss.NewStyle().Faint(true)
)

// item is one test case in the list.
type item struct {
	section report.Section
	desc    string
}

func (i item) Title() string       { return i.section.Title() }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.section.Title() }

type model struct {
	title    string
	palette  report.Palette
	state    viewState
	list     list.Model
	viewport viewport.Model
	selected *report.Section
	width    int
	height   int
}

func newModel(doc report.Document, palette report.Palette) *model {
	var items []list.Item
	for _, cat := range doc.Categories {
		for _, section := range cat.Sections {
			desc := fmt.Sprintf("%s · %s", section.Record.Kind, report.SectionVerdicts(section, palette))
			items = append(items, item{section: section, desc: desc})
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("%s (%d test cases)", doc.Title, len(items))

	return &model{
		title:    doc.Title,
		palette:  palette,
		state:    viewList,
		list:     l,
		viewport: viewport.New(80, 20),
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-2, msg.Height-2)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		filtering := m.state == viewList && m.list.FilterState() == list.Filtering
		if !filtering {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc":
				if m.state == viewDetail {
					m.state = viewList
					m.selected = nil
					return m, nil
				}
			case "enter":
				if m.state == viewList {
					if it, ok := m.list.SelectedItem().(item); ok {
						m.open(it.section)
					}
					return m, nil
				}
			}
		}
	}

	switch m.state {
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) open(section report.Section) {
	m.selected = &section
	m.state = viewDetail
	m.viewport.SetContent(report.SectionText(section, m.palette))
	m.viewport.GotoTop()
}

func (m *model) View() string {
	switch m.state {
	case viewDetail:
		if m.selected == nil {
			return ""
		}
		header := detailTitleStyle.Render(m.title)
		footer := helpStyle.Render("↑/↓ scroll · esc back · q quit")
		return fmt.Sprintf("%s\n\n%s\n%s", header, m.viewport.View(), footer)
	default:
		if len(m.list.Items()) == 0 {
			return lipgloss.NewStyle().Margin(1, 2).Render("No test cases found.\n\n" + helpStyle.Render("q quit"))
		}
		return lipgloss.NewStyle().Margin(1, 2).Render(m.list.View())
	}
}

// Run starts the browser on doc and blocks until the user quits.
func Run(doc report.Document, palette report.Palette) error {
	p := tea.NewProgram(newModel(doc, palette), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
