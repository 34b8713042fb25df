package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/history"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/provider"
	"github.com/cinesrc/cinesrc/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("season", "s", 0, "Season of the episode, for series")
	cmd.Flags().IntP("episode", "e", 0, "Episode number, for series")
	cmd.MarkFlagsRequiredTogether("season", "episode")
}

// identityFrom reads "[kind] [id]" plus the season and episode flags.
func identityFrom(cmd *cobra.Command, args []string) (content.Identity, error) {
	if len(args) != 2 {
		return content.Identity{}, fmt.Errorf("expected a kind and an id, got %d arguments", len(args))
	}

	return content.Parse(
		args[0],
		args[1],
		lo.Must(cmd.Flags().GetInt("season")),
		lo.Must(cmd.Flags().GetInt("episode")),
	)
}

func completionKinds(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return lo.Map(content.Kinds(), func(k content.Kind, _ int) string {
		return string(k)
	}), cobra.ShellCompDirectiveNoFileComp
}

func completionProviderIDs(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	registry, _ := provider.Load()
	if registry == nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return registry.IDs(), cobra.ShellCompDirectiveNoFileComp
}

// loadRegistry loads the providers, warning about broken scripts instead of failing.
func loadRegistry() (*provider.Registry, error) {
	registry, err := provider.Load()
	if registry == nil {
		return nil, err
	}

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(style.WarningColor)(icon.Get(icon.Fail)), err)
	}
	return registry, nil
}

// session wires the components every retrieval command needs.
type session struct {
	registry *provider.Registry
	builder  *catalog.Builder
	manager  *lifecycle.Manager
}

func newSession(ctx context.Context) (*session, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	var opts []catalog.Option
	if size := viper.GetInt(key.CatalogCacheSize); size > 0 {
		c, err := catalog.NewCache(size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, catalog.WithCache(c))
	}

	var managerOpts []lifecycle.Option
	if viper.GetBool(key.HistorySaveOnComplete) {
		managerOpts = append(managerOpts, lifecycle.WithRecorder(history.Open()))
	}

	log.Infof("session with %d providers", registry.Len())

	return &session{
		registry: registry,
		builder:  catalog.NewBuilder(registry, opts...),
		manager:  lifecycle.NewFromConfig(managerOpts...),
	}, nil
}

func (s *session) close() {
	s.manager.Close()
}
