package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/internal/ui"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/open"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/util"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

type (
	catalogBuiltMsg struct{ catalog *catalog.Catalog }
	snapshotMsg     lifecycle.Snapshot
	// startedMsg carries the errors of sources that could not start.
	startedMsg struct {
		started int
		err     error
	}
)

func (b *statefulBubble) buildCatalog() tea.Cmd {
	return func() tea.Msg {
		c, err := b.options.Builder.Build(b.ctx, b.options.Identity)
		if err != nil {
			return err
		}
		return catalogBuiltMsg{catalog: c}
	}
}

func (b *statefulBubble) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.snapshotChannel:
			return snapshotMsg(s)
		case <-b.ctx.Done():
			return nil
		}
	}
}

// startRetrievals subscribes to ids, then starts them off the update loop
// since availability probing may take a while.
func (b *statefulBubble) startRetrievals(ids []string) tea.Cmd {
	for _, id := range ids {
		b.subscribe(id)
	}

	retrievals := b.retrievals
	ctx := b.ctx
	return func() tea.Msg {
		var (
			errs    *multierror.Error
			started int
		)

		for _, id := range ids {
			if _, err := retrievals.StartRetrieval(ctx, id); err != nil {
				log.Warnf("start %s: %v", id, err)
				errs = multierror.Append(errs, err)
				continue
			}
			started++
		}

		return startedMsg{started: started, err: errs.ErrorOrNil()}
	}
}

func (b *statefulBubble) onCatalog(c *catalog.Catalog) tea.Cmd {
	b.catalog = c
	b.retrievals = lifecycle.NewRetrievals(b.options.Manager, c)

	items := lo.Map(c.Groups(), func(g catalog.Group, _ int) list.Item {
		return &listItem{internal: g}
	})
	cmd := b.groupsC.SetItems(items)
	b.groupsC.Title = fmt.Sprintf("Provider Groups - %s", c.Identity())
	b.newState(groupsState)

	if n := c.RejectedCount(); n > 0 {
		cmd = tea.Batch(cmd, ui.Notify(fmt.Sprintf("%s rejected, see logs", util.Quantify(n, "record", "records"))))
		log.Warnf("catalog of %s: %v", c.Identity(), c.Rejections())
	}

	if c.Empty() {
		cmd = tea.Batch(cmd, ui.Notify("no sources found"))
	}

	return cmd
}

func (b *statefulBubble) openGroup(name string) tea.Cmd {
	b.selectedGroup = name
	items := lo.Map(b.catalog.GroupItems(name), func(item source.Item, _ int) list.Item {
		_, marked := b.marked[item.Base().ID]
		return &listItem{internal: item, marked: marked}
	})

	b.sourcesC.Title = name
	b.sourcesC.ResetSelected()
	b.newState(sourcesState)
	return b.sourcesC.SetItems(items)
}

// onSnapshot records s and rebuilds the retrievals list. A not started
// snapshot means the retrieval was discarded.
func (b *statefulBubble) onSnapshot(s lifecycle.Snapshot) tea.Cmd {
	id := s.Key.SourceID

	if s.Status == lifecycle.NotStarted {
		delete(b.snapshots, id)
		b.order = slices.DeleteFunc(b.order, func(o string) bool { return o == id })
	} else {
		if _, ok := b.snapshots[id]; !ok {
			b.order = append(b.order, id)
		}
		b.snapshots[id] = s
	}

	return b.refreshRetrievals()
}

func (b *statefulBubble) refreshRetrievals() tea.Cmd {
	items := lo.FilterMap(b.order, func(id string, _ int) (list.Item, bool) {
		item, ok := b.catalog.Lookup(id)
		if !ok {
			return nil, false
		}
		s := b.snapshots[id]
		return &listItem{internal: &retrieval{
			item:     item,
			snapshot: s,
			bar:      b.progressC.ViewAs(float64(s.Progress) / 100),
		}}, true
	})

	return b.retrievalsC.SetItems(items)
}

func (b *statefulBubble) selectedRetrieval() (*retrieval, bool) {
	item, ok := b.retrievalsC.SelectedItem().(*listItem)
	if !ok {
		return nil, false
	}
	r, ok := item.internal.(*retrieval)
	return r, ok
}

// control applies action to the selected retrieval and notifies when it was refused.
func (b *statefulBubble) control(name string, action func(id string) lifecycle.Snapshot) tea.Cmd {
	r, ok := b.selectedRetrieval()
	if !ok {
		return nil
	}

	before := r.snapshot
	after := action(r.item.Base().ID)
	if after.Status == before.Status && after.AttemptID == before.AttemptID {
		return ui.Notify(fmt.Sprintf("cannot %s a %s retrieval", name, before.Status))
	}
	return nil
}

func (b *statefulBubble) openLocator(item source.Item) tea.Cmd {
	locator := item.Base().Locator
	if t, ok := item.(source.TorrentSource); ok && t.Magnet != "" {
		locator = t.Magnet
	}

	if err := open.Start(locator); err != nil {
		return ui.NotifyFailure(err)
	}
	return ui.Notify("opened " + item.Base().Name)
}
