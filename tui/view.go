package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/style"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case groupsState:
		output = listExtraPaddingStyle.Render(b.groupsC.View())
	case sourcesState:
		output = listExtraPaddingStyle.Render(b.sourcesC.View())
	case retrievalsState:
		output = listExtraPaddingStyle.Render(b.retrievalsC.View() + "\n\n" + b.viewTally())
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

// viewTally counts the retrievals per status, in lifecycle order.
func (b *statefulBubble) viewTally() string {
	counts := lo.CountValuesBy(lo.Values(b.snapshots), func(s lifecycle.Snapshot) lifecycle.Status {
		return s.Status
	})

	var parts []string
	for _, status := range []lifecycle.Status{lifecycle.Downloading, lifecycle.Paused, lifecycle.Completed, lifecycle.Error} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, style.Fg(statusColors[status])(status.String())))
		}
	}

	if len(parts) == 0 {
		return style.Faint("no retrievals")
	}
	return strings.Join(parts, style.Faint(" · "))
}

func (b *statefulBubble) viewError() string {
	body := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true).Render(b.lastError.Error())
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			wrap.String(body, b.width),
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
