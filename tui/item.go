package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/spf13/viper"
)

// retrieval is a row of the retrievals list.
type retrieval struct {
	item     source.Item
	snapshot lifecycle.Snapshot
	bar      string
}

// listItem wraps the values shown by the lists.
type listItem struct {
	internal any
	marked   bool
}

func (t *listItem) toggleMark() {
	t.marked = !t.marked
}

func (t *listItem) getMark() string {
	return lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Mark))
}

func variantIcon(v source.Variant) string {
	switch v {
	case source.VariantDownload:
		return icon.Get(icon.Download)
	case source.VariantTorrent:
		return icon.Get(icon.Torrent)
	default:
		return icon.Get(icon.Stream)
	}
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case catalog.Group:
		title = e.Name
	case source.Item:
		d := e.Base()
		title = fmt.Sprintf("%s %s %s", variantIcon(e.Variant()), d.Name, style.Quality(d.Quality))
	case *retrieval:
		title = fmt.Sprintf("%s %s", e.item.Base().Name, renderStatus(e.snapshot.Status))
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, t.getMark())
	}

	return
}

func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case catalog.Group:
		description = fmt.Sprintf("%s from %s",
			util.Quantify(len(e.IDs), "source", "sources"),
			strings.Join(e.Providers, ", "))
	case source.Item:
		description = describe(e)
	case *retrieval:
		s := e.snapshot
		switch s.Status {
		case lifecycle.Error:
			description = style.Fg(style.ErrorColor)(s.Message)
		case lifecycle.Completed:
			description = style.Fg(style.SuccessColor)(icon.Get(icon.Success) + " done")
		default:
			description = fmt.Sprintf("%s %3d%%  %s  %s", e.bar, s.Progress, s.SpeedLabel, style.Faint(s.TimeRemainingLabel))
		}
	}

	return
}

func describe(item source.Item) string {
	d := item.Base()
	parts := []string{d.Kind.String()}

	if d.Language != "" {
		parts = append(parts, d.Language)
	}
	if subs := d.Subtitles(); len(subs) > 0 {
		parts = append(parts, "subs "+strings.Join(subs, "/"))
	}
	if d.AdFree {
		parts = append(parts, style.Fg(style.SuccessColor)("ad-free"))
	}

	switch e := item.(type) {
	case source.DownloadOption:
		parts = append(parts, e.Format.String())
		if e.FileSizeLabel != "" {
			parts = append(parts, e.FileSizeLabel)
		}
	case source.TorrentSource:
		parts = append(parts,
			fmt.Sprintf("%d↑ %d↓", e.Seeders, e.Leechers),
			style.Health(e.Health))
		if e.Trusted {
			parts = append(parts, "trusted")
		}
	}

	if viper.GetBool(key.TUIShowLocators) {
		parts = append(parts, style.Faint(d.Locator))
	}

	return strings.Join(parts, " • ")
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case catalog.Group:
		return e.Name
	case source.Item:
		d := e.Base()
		return d.Name + " " + d.Quality.String() + " " + d.Language
	case *retrieval:
		return e.item.Base().Name
	default:
		return ""
	}
}
