// Package style composes the lipgloss styles of terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/source"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored returns a style with the given foreground and background.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a function rendering its input in c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

// Tag renders its input as a padded block.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

var ErrorTitle = func(s string) string {
	return Colored(color.New("230"), color.Red).Padding(0, 1).Render(s)
}

// Quality renders a quality tier as a tag.
func Quality(q source.Quality) string {
	return Tag(color.New("0"), color.Quality(q))(q.String())
}

// Health renders a swarm health in its color.
func Health(h source.Health) string {
	return Fg(color.Health(h))(h.String())
}
