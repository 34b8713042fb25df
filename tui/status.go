package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/style"
)

var statusColors = map[lifecycle.Status]lipgloss.Color{
	lifecycle.NotStarted:  style.FaintColor,
	lifecycle.Downloading: style.AccentColor,
	lifecycle.Paused:      style.WarningColor,
	lifecycle.Completed:   style.SuccessColor,
	lifecycle.Error:       style.ErrorColor,
}

// renderStatus draws a status as a bold upper-case label in its color.
func renderStatus(s lifecycle.Status) string {
	return style.New().Bold(true).Foreground(statusColors[s]).Render(strings.ToUpper(s.String()))
}
