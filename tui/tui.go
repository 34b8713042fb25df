// Package tui is the interactive retrieval dashboard.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/lifecycle"
)

type Options struct {
	Identity content.Identity
	Builder  *catalog.Builder
	Manager  *lifecycle.Manager
}

// Run builds the catalog of options.Identity and lets the user drive its
// retrievals until they quit.
func Run(ctx context.Context, options *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bubble := newBubble(ctx, options)
	defer bubble.unsubscribe()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
