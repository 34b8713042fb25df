package tui

import (
	"fmt"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/internal/ui"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case ui.Notification:
		return b, tea.Batch(cmds...)
	case snapshotMsg:
		cmds = append(cmds, b.onSnapshot(lifecycle.Snapshot(msg)), b.waitForSnapshot())
		return b, tea.Batch(cmds...)
	case startedMsg:
		if msg.err != nil {
			cmds = append(cmds, ui.NotifyFailure(msg.err))
		} else {
			cmds = append(cmds, ui.Notify(fmt.Sprintf("started %s", util.Quantify(msg.started, "retrieval", "retrievals"))))
		}
		return b, tea.Batch(cmds...)
	case error:
		b.raiseError(msg)
		return b, tea.Batch(cmds...)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		if bubblesKey.Matches(msg, b.keymap.back) {
			if l := b.activeList(); l != nil && l.FilterState() != list.Unfiltered {
				var cmd tea.Cmd
				*l, cmd = l.Update(msg)
				return b, cmd
			}

			if b.statesHistory.Len() == 0 {
				return b, tea.Quit
			}

			b.previousState()
			return b, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case loadingState:
		cmd = b.updateLoading(msg)
	case groupsState:
		cmd = b.updateGroups(msg)
	case sourcesState:
		cmd = b.updateSources(msg)
	case retrievalsState:
		cmd = b.updateRetrievals(msg)
	case errorState:
		cmd = b.updateError(msg)
	}

	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) activeList() *list.Model {
	switch b.state {
	case groupsState:
		return &b.groupsC
	case sourcesState:
		return &b.sourcesC
	case retrievalsState:
		return &b.retrievalsC
	default:
		return nil
	}
}

// filtering reports whether the active list consumes keys for its filter.
func (b *statefulBubble) filtering() bool {
	l := b.activeList()
	return l != nil && l.FilterState() == list.Filtering
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case catalogBuiltMsg:
		return b.onCatalog(msg.catalog)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.quit) {
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateGroups(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !b.filtering() {
		switch {
		case bubblesKey.Matches(msg, b.keymap.showRetrievals):
			b.newState(retrievalsState)
			return nil
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if item, ok := b.groupsC.SelectedItem().(*listItem); ok {
				return b.openGroup(item.internal.(catalog.Group).Name)
			}
			return nil
		}
	}

	var cmd tea.Cmd
	b.groupsC, cmd = b.groupsC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateSources(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !b.filtering() {
		selected, _ := b.sourcesC.SelectedItem().(*listItem)

		switch {
		case bubblesKey.Matches(msg, b.keymap.showRetrievals):
			b.newState(retrievalsState)
			return nil
		case bubblesKey.Matches(msg, b.keymap.selectOne):
			if selected != nil {
				b.mark(selected, !selected.marked)
				b.sourcesC.CursorDown()
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.selectAll):
			for _, item := range b.sourcesC.Items() {
				b.mark(item.(*listItem), true)
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.clearSelection):
			for _, item := range b.sourcesC.Items() {
				b.mark(item.(*listItem), false)
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if selected != nil {
				return b.openLocator(selected.internal.(source.Item))
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.retrieve):
			ids := lo.Keys(b.marked)
			if len(ids) == 0 && selected != nil {
				ids = []string{selected.internal.(source.Item).Base().ID}
			}
			if len(ids) == 0 {
				return nil
			}

			// Start in catalog order.
			ids = lo.Filter(lo.Map(b.catalog.Items(), func(item source.Item, _ int) string {
				return item.Base().ID
			}), func(id string, _ int) bool { return lo.Contains(ids, id) })

			for _, item := range b.sourcesC.Items() {
				b.mark(item.(*listItem), false)
			}
			clear(b.marked)

			b.newState(retrievalsState)
			return b.startRetrievals(ids)
		}
	}

	var cmd tea.Cmd
	b.sourcesC, cmd = b.sourcesC.Update(msg)
	return cmd
}

func (b *statefulBubble) mark(item *listItem, marked bool) {
	item.marked = marked
	id := item.internal.(source.Item).Base().ID
	if marked {
		b.marked[id] = struct{}{}
	} else {
		delete(b.marked, id)
	}
}

func (b *statefulBubble) updateRetrievals(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !b.filtering() {
		switch {
		case bubblesKey.Matches(msg, b.keymap.pause):
			return b.control("pause", b.retrievals.PauseRetrieval)
		case bubblesKey.Matches(msg, b.keymap.resume):
			return b.control("resume", b.retrievals.ResumeRetrieval)
		case bubblesKey.Matches(msg, b.keymap.retry):
			return b.control("retry", b.retrievals.RetryRetrieval)
		case bubblesKey.Matches(msg, b.keymap.discard):
			if r, ok := b.selectedRetrieval(); ok {
				b.retrievals.Discard(r.item.Base().ID)
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.acknowledge):
			if r, ok := b.selectedRetrieval(); ok && !b.retrievals.Acknowledge(r.item.Base().ID) {
				return ui.Notify(fmt.Sprintf("cannot acknowledge a %s retrieval", r.snapshot.Status))
			}
			return nil
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if r, ok := b.selectedRetrieval(); ok {
				return b.openLocator(r.item)
			}
			return nil
		}
	}

	var cmd tea.Cmd
	b.retrievalsC, cmd = b.retrievalsC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.quit) {
		return tea.Quit
	}
	return nil
}
