package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/internal/ui"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
)

type statefulBubble struct {
	ctx context.Context

	state         state
	statesHistory util.Stack[state]

	keymap *statefulKeymap

	// components
	spinnerC    spinner.Model
	groupsC     list.Model
	sourcesC    list.Model
	retrievalsC list.Model
	progressC   progress.Model
	helpC       help.Model

	catalog    *catalog.Catalog
	retrievals *lifecycle.Retrievals

	selectedGroup string
	// marked holds the source ids selected across groups.
	marked map[string]struct{}

	// snapshots is the latest snapshot per source id, in start order.
	snapshots     map[string]lifecycle.Snapshot
	order         []string
	subscriptions map[string]func()

	snapshotChannel chan lifecycle.Snapshot

	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s, remembering the current state unless it is transient.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	for _, l := range []*list.Model{&b.groupsC, &b.sourcesC, &b.retrievalsC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}
	// room for the status tally
	b.retrievalsC.SetHeight(max(listHeight-2, 0))

	b.progressC.Width = util.Clamp(listWidth/3, 10, 40)
	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

// subscribe follows the snapshots of id until unsubscribe.
func (b *statefulBubble) subscribe(id string) {
	if _, ok := b.subscriptions[id]; ok {
		return
	}

	b.subscriptions[id] = b.retrievals.OnProgress(id, func(s lifecycle.Snapshot) {
		select {
		case b.snapshotChannel <- s:
		case <-b.ctx.Done():
		}
	})
}

func (b *statefulBubble) unsubscribe() {
	for id, cancel := range b.subscriptions {
		cancel()
		delete(b.subscriptions, id)
	}
}

func newBubble(ctx context.Context, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		ctx:           ctx,
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		marked:          make(map[string]struct{}),
		snapshots:       make(map[string]lifecycle.Snapshot),
		subscriptions:   make(map[string]func()),
		snapshotChannel: make(chan lifecycle.Snapshot),

		notifier: &ui.Model{},
		options:  options,
	}

	makeList := func(title string, titleColor lipgloss.Color) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(style.Text)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		listC.Styles.Title = lipgloss.NewStyle().Foreground(style.Surface).Background(titleColor).Padding(0, 1)
		listC.StatusMessageLifetime = time.Second * 3
		listC.SetShowPagination(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.groupsC = makeList("Provider Groups", style.Lavender)
	bubble.groupsC.SetStatusBarItemName("group", "groups")

	bubble.sourcesC = makeList("Sources", style.Peach)
	bubble.sourcesC.SetStatusBarItemName("source", "sources")

	bubble.retrievalsC = makeList("Retrievals", style.Mauve)
	bubble.retrievalsC.SetStatusBarItemName("retrieval", "retrievals")

	bubble.progressStatus = fmt.Sprintf("Aggregating sources for %s", options.Identity)
	bubble.setState(loadingState)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
