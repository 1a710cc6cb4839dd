// Package ui renders command output: bordered tables and colored outcome
// labels. Colors are dropped automatically when output is not a terminal.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pastries/pastries/pkg/installer"
)

var (
	Success = lipgloss.Color("#10B981")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#06B6D4")
	Muted   = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(Muted)

	successStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(Info)
	mutedStyle   = lipgloss.NewStyle().Foreground(Muted)
)

// Table renders rows under headers as a bordered table.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// RenderTable writes Table(headers, rows) followed by a newline.
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	_, err := fmt.Fprintln(w, Table(headers, rows))
	return err
}

// Label returns the bracketed, colored label for an outcome.
func Label(o installer.Outcome) string {
	text := "[" + o.String() + "]"
	switch o {
	case installer.Added, installer.Updated:
		return successStyle.Render(text)
	case installer.Failed:
		return errorStyle.Render(text)
	case installer.Ignored:
		return infoStyle.Render(text)
	default:
		return mutedStyle.Render(text)
	}
}

// Removed is the label printed for a deleted dependency.
func Removed() string {
	return successStyle.Render("[Removed]")
}

// Result formats one line of update or add output.
func Result(r installer.Result) string {
	name := r.Name
	if name == "" {
		name = r.Path
	}
	line := fmt.Sprintf("%s %s", Label(r.Outcome), name)
	if r.Outcome == installer.Failed {
		line += mutedStyle.Render(": " + r.Reason())
	}
	return line
}
