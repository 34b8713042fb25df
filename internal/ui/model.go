// Package ui holds the transient notifications of the dashboard.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/style"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Model shows at most one notification, appended to the last rendered line.
type Model struct {
	notification Notification
	// generation drops clear messages of replaced notifications.
	generation int
}

// Notification is a message for the user. Failures are drawn in the error color.
type Notification struct {
	Text    string
	Failure bool
}

type clearMsg struct {
	generation int
}

// Notify returns a command showing text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return Notification{Text: text}
	}
}

// NotifyFailure returns a command showing err as a failure.
func NotifyFailure(err error) tea.Cmd {
	return func() tea.Msg {
		return Notification{Text: err.Error(), Failure: true}
	}
}

// Update handles Notification and its delayed clearing.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Notification:
		m.notification = msg
		m.generation++
		generation := m.generation
		return tea.Tick(Lifetime, func(time.Time) tea.Msg {
			return clearMsg{generation: generation}
		})
	case clearMsg:
		if msg.generation == m.generation {
			m.notification = Notification{}
		}
	}
	return nil
}

// Text is the notification on screen, if any.
func (m *Model) Text() string {
	return m.notification.Text
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification.Text == "" {
		return content
	}

	color := style.FaintColor
	if m.notification.Failure {
		color = style.ErrorColor
	}
	rendered := lipgloss.NewStyle().Foreground(color).Render(m.notification.Text)

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + rendered
	return strings.Join(lines, "\n")
}
