package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/d07RiV/d4data/sno"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateSelectKind browseState = iota
	stateSelectFile
	stateShowRecord
)

// listHeight is the number of list rows shown before a window size is known.
const listHeight = 20

type browseModel struct {
	app      *app
	kindList string
	lib      *sno.Library
	err      error
	kinds    []string
	files    []*sno.File
	kind     string
	filter   textinput.Model
	record   []string
	title    string
	selected int
	offset   int
	height   int
	state    browseState
}

type libraryMsg struct {
	err   error
	lib   *sno.Library
	kinds []string
}

type filesMsg struct {
	err   error
	kind  string
	files []*sno.File
}

type recordMsg struct {
	err   error
	title string
	lines []string
}

func newBrowseModel(a *app, kindList string) *browseModel {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to narrow the list"
	ti.Width = 40
	ti.Focus()
	return &browseModel{app: a, kindList: kindList, filter: ti, height: listHeight}
}

func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadLibrary, textinput.Blink)
}

func (m *browseModel) loadLibrary() tea.Msg {
	kinds, err := m.app.kinds(m.kindList)
	if err != nil {
		return libraryMsg{err: err}
	}
	_, decoders, err := m.app.decoders(kinds)
	if err != nil {
		return libraryMsg{err: err}
	}
	return libraryMsg{lib: m.app.library(decoders), kinds: kinds}
}

func (m *browseModel) loadFiles(kind string) tea.Cmd {
	return func() tea.Msg {
		files, err := m.lib.Files(kind)
		if err != nil {
			return filesMsg{err: err, kind: kind}
		}
		return filesMsg{kind: kind, files: sortedFiles(files)}
	}
}

func (m *browseModel) loadRecord(f *sno.File) tea.Cmd {
	return func() tea.Msg {
		title := fmt.Sprintf("%s/%s (uid %d)", m.kind, f.Name, f.UID)
		v, err := f.Data()
		if err != nil {
			return recordMsg{err: err, title: title}
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return recordMsg{err: err, title: title}
		}
		return recordMsg{title: title, lines: strings.Split(string(data), "\n")}
	}
}

// items returns the names of the current list that match the filter.
func (m *browseModel) items() []string {
	var all []string
	switch m.state {
	case stateSelectKind:
		all = m.kinds
	case stateSelectFile:
		all = make([]string, len(m.files))
		for i, f := range m.files {
			all[i] = f.Name
		}
	}
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		return all
	}
	var out []string
	for _, s := range all {
		if strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
		}
	}
	return out
}

func (m *browseModel) resetList() {
	m.filter.SetValue("")
	m.selected = 0
	m.offset = 0
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 1)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			m.move(-1)
			return m, nil

		case "down":
			m.move(1)
			return m, nil

		case "enter":
			return m, m.open()

		case "esc":
			switch m.state {
			case stateSelectKind:
				if m.err != nil && m.lib != nil {
					m.err = nil
					return m, nil
				}
				return m, tea.Quit
			case stateSelectFile:
				m.state = stateSelectKind
				m.resetList()
			case stateShowRecord:
				m.state = stateSelectFile
				m.record = nil
				m.err = nil
				m.offset = 0
			}
			return m, nil
		}

	case libraryMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lib = msg.lib
		m.kinds = msg.kinds

	case filesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.kind = msg.kind
		m.files = msg.files
		m.state = stateSelectFile
		m.resetList()

	case recordMsg:
		m.title = msg.title
		m.record = msg.lines
		m.err = msg.err
		m.offset = 0
		m.state = stateShowRecord
	}

	if m.state != stateShowRecord {
		var cmd tea.Cmd
		prev := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != prev {
			m.selected = 0
			m.offset = 0
		}
		return m, cmd
	}
	return m, nil
}

func (m *browseModel) move(delta int) {
	if m.state == stateShowRecord {
		m.offset = clamp(m.offset+delta, 0, max(len(m.record)-m.height, 0))
		return
	}
	n := len(m.items())
	if n == 0 {
		return
	}
	m.selected = clamp(m.selected+delta, 0, n-1)
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
}

func (m *browseModel) open() tea.Cmd {
	items := m.items()
	if m.state == stateShowRecord || m.selected >= len(items) {
		return nil
	}
	name := items[m.selected]
	switch m.state {
	case stateSelectKind:
		return m.loadFiles(name)
	case stateSelectFile:
		for _, f := range m.files {
			if f.Name == name {
				return m.loadRecord(f)
			}
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (m *browseModel) View() string {
	if m.err != nil && m.state != stateShowRecord {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to go back, ctrl+c to quit.", m.err))
	}
	if m.lib == nil {
		return "Compiling definitions..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("d4data"))
	b.WriteString(" ")

	switch m.state {
	case stateSelectKind, stateSelectFile:
		if m.state == stateSelectKind {
			b.WriteString(m.app.cfg.Meta)
		} else {
			b.WriteString(m.kind)
		}
		b.WriteString("\n\n")
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")

		items := m.items()
		end := min(m.offset+m.height, len(items))
		for i := m.offset; i < end; i++ {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + items[i]))
			} else {
				b.WriteString(itemStyle.Render("  " + items[i]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d • ↑/↓ select • enter open • esc back", len(items), m.total())))

	case stateShowRecord:
		b.WriteString(m.title)
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			end := min(m.offset+m.height, len(m.record))
			b.WriteString(recordStyle.Render(strings.Join(m.record[m.offset:end], "\n")))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • ctrl+c quit"))
	}
	return b.String()
}

func (m *browseModel) total() int {
	if m.state == stateSelectKind {
		return len(m.kinds)
	}
	return len(m.files)
}

func (a *app) browse(args []string) error {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	kindList := fs.String("kinds", "", "Resource kinds (comma-separated, default: every kind under the meta root)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := tea.NewProgram(newBrowseModel(a, *kindList), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
