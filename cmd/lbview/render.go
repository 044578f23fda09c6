package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6"))
)

func renderBoards(boards []board) string {
	var sb strings.Builder
	for i, b := range boards {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(titleStyle.Render(b.name))
		sb.WriteString("\n")
		if len(b.rows) == 0 {
			sb.WriteString("no results yet")
			continue
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(b.header...).
			Rows(b.rows...)
		sb.WriteString(t.String())
	}
	return sb.String()
}
