// Package icon renders UI symbols in the variant chosen by icons.variant.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares.
package icon

import (
	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/style"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns every supported variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Progress
	Question
	Mark
	Lua
	Go
	Stream
	Download
	Torrent
	Paused
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    style.Fg(color.Red)(""),
		plain:   style.Fg(color.Red)("X"),
		kaomoji: style.Fg(color.Red)("(×_×)"),
		squares: style.Fg(color.Red)("■"),
	},
	Success: {
		emoji:   "🎉",
		nerd:    style.Fg(color.Green)(""),
		plain:   style.Fg(color.Green)("✓"),
		kaomoji: style.Fg(color.Green)("(ᵔ◡ᵔ)"),
		squares: style.Fg(color.Green)("■"),
	},
	Progress: {
		emoji:   "⏳",
		nerd:    style.Fg(color.Blue)(""),
		plain:   style.Fg(color.Blue)("…"),
		kaomoji: style.Fg(color.Blue)("(・_・)"),
		squares: style.Fg(color.Blue)("■"),
	},
	Question: {
		emoji:   "🤔",
		nerd:    style.Fg(color.Yellow)(""),
		plain:   style.Fg(color.Yellow)("?"),
		kaomoji: style.Fg(color.Yellow)("(°ロ°)?"),
		squares: style.Fg(color.Yellow)("■"),
	},
	Mark: {
		emoji:   "➡️",
		nerd:    style.Fg(color.Purple)(""),
		plain:   style.Fg(color.Purple)(">"),
		kaomoji: style.Fg(color.Purple)("→"),
		squares: style.Fg(color.Purple)("▸"),
	},
	Lua: {
		emoji:   "🌙",
		nerd:    style.Fg(color.Blue)(""),
		plain:   style.Fg(color.Blue)("Lua"),
		kaomoji: style.Fg(color.Blue)("(◐‿◑)"),
		squares: style.Fg(color.Blue)("■"),
	},
	Go: {
		emoji:   "🐹",
		nerd:    style.Fg(color.Cyan)(""),
		plain:   style.Fg(color.Cyan)("Go"),
		kaomoji: style.Fg(color.Cyan)("ʕ•ᴥ•ʔ"),
		squares: style.Fg(color.Cyan)("■"),
	},
	Stream: {
		emoji:   "📺",
		nerd:    "",
		plain:   "~",
		kaomoji: "(▶)",
		squares: "▶",
	},
	Download: {
		emoji:   "📦",
		nerd:    "",
		plain:   "v",
		kaomoji: "(↓)",
		squares: "▼",
	},
	Torrent: {
		emoji:   "🧲",
		nerd:    "",
		plain:   "@",
		kaomoji: "(∞)",
		squares: "◆",
	},
	Paused: {
		emoji:   "⏸️",
		nerd:    style.Fg(color.Yellow)(""),
		plain:   style.Fg(color.Yellow)("||"),
		kaomoji: style.Fg(color.Yellow)("(－_－)"),
		squares: style.Fg(color.Yellow)("■"),
	},
}

// Get returns the rendered symbol for i.
func Get(i Icon) string {
	if def, ok := icons[i]; ok {
		return def.Get()
	}
	return ""
}
