package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	reportNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")).
			Width(24)

	reportCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	reportSummaryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))
)

// report writes a short table, styled when the output is a terminal.
type report struct {
	w      io.Writer
	styled bool
	b      strings.Builder
}

func newReport(f *os.File) *report {
	return &report{w: f, styled: term.IsTerminal(int(f.Fd()))}
}

func (r *report) render(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r *report) title(text string) {
	r.b.WriteString(r.render(reportTitleStyle, text))
	r.b.WriteString("\n\n")
}

func (r *report) row(name string, cells ...string) {
	if r.styled {
		r.b.WriteString(reportNameStyle.Render(name))
		for _, c := range cells {
			r.b.WriteString(reportCellStyle.Render(c))
		}
	} else {
		r.b.WriteString(name)
		for _, c := range cells {
			r.b.WriteString("\t")
			r.b.WriteString(c)
		}
	}
	r.b.WriteString("\n")
}

func (r *report) summary(text string) {
	r.b.WriteString("\n")
	r.b.WriteString(r.render(reportSummaryStyle, text))
	r.b.WriteString("\n")
}

func (r *report) flush() error {
	_, err := io.WriteString(r.w, r.b.String())
	r.b.Reset()
	return err
}
