package mini

import (
	"fmt"

	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
)

type state int

const (
	groupSelectState state = iota + 1
	sourceSelectState
	retrieveState
	quitState
)

const (
	backOption = "← back"
	quitOption = "quit"
)

func (m *mini) handleState() error {
	switch m.state {
	case groupSelectState:
		return m.handleGroupSelectState()
	case sourceSelectState:
		return m.handleSourceSelectState()
	}
	return nil
}

func (m *mini) handleGroupSelectState() error {
	groups := m.catalog.Groups()
	if len(groups) == 0 {
		return fmt.Errorf("no sources found for %s", m.catalog.Identity())
	}

	// A single group needs no question, and nothing to go back to.
	if len(groups) == 1 {
		m.group = groups[0].Name
		m.setState(sourceSelectState)
		return nil
	}

	labels := lo.Map(groups, func(g catalog.Group, _ int) string {
		return groupLabel(g)
	})

	answer, err := m.prompter.selectOne("Select provider group", append(labels, quitOption))
	if err != nil {
		return err
	}

	if answer == quitOption {
		m.setState(quitState)
		return nil
	}

	_, i, _ := lo.FindIndexOf(labels, func(l string) bool { return l == answer })
	m.group = groups[i].Name
	m.newState(sourceSelectState)
	return nil
}

func (m *mini) handleSourceSelectState() error {
	items := m.catalog.GroupItems(m.group)
	labels := lo.Map(items, func(item source.Item, _ int) string {
		return sourceLabel(item)
	})

	answers, err := m.prompter.selectMany("Select sources to retrieve", append(labels, backOption))
	if err != nil {
		return err
	}

	if len(answers) == 0 || lo.Contains(answers, backOption) {
		m.previousState()
		return nil
	}

	m.selected = lo.FilterMap(items, func(item source.Item, i int) (string, bool) {
		return item.Base().ID, lo.Contains(answers, labels[i])
	})
	m.newState(retrieveState)
	return nil
}

func groupLabel(g catalog.Group) string {
	return fmt.Sprintf("%s (%s)", g.Name, util.Quantify(len(g.IDs), "source", "sources"))
}

func sourceLabel(item source.Item) string {
	d := item.Base()
	return fmt.Sprintf("%s [%s] %s (%s)", d.Name, d.Quality, item.Variant(), d.ID)
}
