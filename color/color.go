// Package color names the colors used by terminal output.
package color

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/source"
)

// New initializes a lipgloss.Color from an ANSI code or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")

	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")

	Orange = New("#ffb703")
	Gray   = New("#808080")
)

// qualities ramps from muted to bright as quality rises.
var qualities = map[source.Quality]lipgloss.Color{
	source.QualitySD:  Gray,
	source.QualityHD:  Blue,
	source.QualityFHD: Purple,
	source.Quality4K:  Orange,
}

// Quality returns the color of a quality tier.
func Quality(q source.Quality) lipgloss.Color {
	if c, ok := qualities[q]; ok {
		return c
	}
	return Gray
}

var healths = map[source.Health]lipgloss.Color{
	source.HealthExcellent: HiGreen,
	source.HealthGood:      Green,
	source.HealthFair:      Yellow,
	source.HealthPoor:      Red,
}

// Health returns the color of a swarm health.
func Health(h source.Health) lipgloss.Color {
	if c, ok := healths[h]; ok {
		return c
	}
	return Gray
}
