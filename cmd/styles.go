package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
)

type field struct {
	label string
	value string
}

// panel renders a titled box of label/value rows.
func panel(title string, fields []field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", width+1, f.label+":")))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(f.value))
	}
	return panelStyle.Render(b.String())
}

func divider() string {
	return labelStyle.Render(strings.Repeat("─", 80))
}
