// Package mini is a prompt based alternative to the dashboard: pick a group,
// pick sources, then follow them line by line.
package mini

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/inline"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type Options struct {
	Out        io.Writer
	Retrievals *lifecycle.Retrievals
}

// prompter asks the user. Tests replace it.
type prompter interface {
	selectOne(message string, options []string) (string, error)
	selectMany(message string, options []string) ([]string, error)
}

type mini struct {
	state         state
	statesHistory util.Stack[state]

	options  *Options
	catalog  *catalog.Catalog
	prompter prompter

	group    string
	selected []string
}

func newMini(options *Options, p prompter) *mini {
	return &mini{
		statesHistory: util.Stack[state]{},
		options:       options,
		catalog:       options.Retrievals.Catalog(),
		prompter:      p,
	}
}

func (m *mini) previousState() {
	if m.statesHistory.Len() > 0 {
		m.setState(m.statesHistory.Pop())
		return
	}
	m.setState(quitState)
}

func (m *mini) setState(s state) {
	m.state = s
}

func (m *mini) newState(s state) {
	if m.state == s {
		return
	}
	m.statesHistory.Push(m.state)
	m.setState(s)
}

// Run prompts until sources are picked or the user quits. Picked sources are
// retrieved and followed until they end.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	m := newMini(options, surveyPrompter{})
	m.state = groupSelectState

	for {
		err := m.handleState()
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		switch m.state {
		case quitState:
			return nil
		case retrieveState:
			return inline.Run(ctx, &inline.Options{
				Out:        options.Out,
				Retrievals: options.Retrievals,
				Picker:     mo.Some(m.picker()),
				Wait:       true,
			})
		}
	}
}

func (m *mini) picker() inline.Picker {
	return func(items []source.Item) []source.Item {
		return lo.Filter(items, func(item source.Item, _ int) bool {
			return lo.Contains(m.selected, item.Base().ID)
		})
	}
}

type surveyPrompter struct{}

func (surveyPrompter) selectOne(message string, options []string) (answer string, err error) {
	err = survey.AskOne(&survey.Select{Message: message, Options: options, PageSize: 15}, &answer)
	return
}

func (surveyPrompter) selectMany(message string, options []string) (answers []string, err error) {
	err = survey.AskOne(&survey.MultiSelect{Message: message, Options: options, PageSize: 15}, &answers)
	return
}
