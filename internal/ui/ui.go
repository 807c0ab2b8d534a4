// Package ui holds the terminal styles shared by the command surface.
// Styles degrade to plain text on dumb terminals; lipgloss handles the
// capability detection.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/docgov/docgov/internal/diagnostic"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4D96FF"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD93D"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6BCB77"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// OK renders a success line.
func OK(s string) string {
	return okStyle.Render(s)
}

// Dim renders secondary detail.
func Dim(s string) string {
	return dimStyle.Render(s)
}

// Render formats one diagnostic with its level colored.
func Render(d diagnostic.Diagnostic) string {
	level := d.Level().String()
	switch d.Level() {
	case diagnostic.Error:
		level = errorStyle.Render(level)
	default:
		level = warnStyle.Render(level)
	}
	if d.File == "" {
		return fmt.Sprintf("%s[%s]: %s", level, d.Code, d.Message)
	}
	return fmt.Sprintf("%s[%s]: %s (%s)", level, d.Code, d.Message, d.File)
}

// Summary renders the closing count line of a check run.
func Summary(errors, warnings int) string {
	if errors == 0 && warnings == 0 {
		return okStyle.Render("ok: no findings")
	}
	line := fmt.Sprintf("%d error(s), %d warning(s)", errors, warnings)
	if errors > 0 {
		return errorStyle.Render(line)
	}
	return warnStyle.Render(line)
}
