package cmd

import (
	"fmt"
	"os"

	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/internal/cache"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/cinesrc/cinesrc/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// resource is a path the application owns. where prints it and clear,
// when clearable, removes it.
type resource struct {
	name      string
	flag      string
	short     mo.Option[string]
	path      func() string
	listed    bool
	clearable bool
}

var resources = []resource{
	{"Config", "config", mo.Some("c"), where.Config, true, false},
	{"Providers", "providers", mo.Some("p"), where.Providers, true, false},
	{"Logs", "logs", mo.Some("l"), where.Logs, true, true},
	{"Cache", "cache", mo.None[string](), where.Cache, false, true},
	{"Provider records", "records", mo.Some("r"), cache.Dir, false, true},
	{"History", "history", mo.Some("s"), where.History, false, true},
	{"Queries", "queries", mo.Some("q"), where.Queries, false, true},
	{"Temp", "temp", mo.None[string](), where.Temp, false, false},
}

func addResourceFlag(cmd *cobra.Command, r resource, usage string) {
	if short, ok := r.short.Get(); ok {
		cmd.Flags().BoolP(r.flag, short, false, usage)
	} else {
		cmd.Flags().Bool(r.flag, false, usage)
	}
}

func init() {
	rootCmd.AddCommand(whereCmd, clearCmd)

	for _, r := range resources {
		addResourceFlag(whereCmd, r, r.name+" path")
		if !r.listed {
			lo.Must0(whereCmd.Flags().MarkHidden(r.flag))
		}

		if r.clearable {
			addResourceFlag(clearCmd, r, "clear "+r.name)
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(resources, func(r resource, _ int) string { return r.flag })...)
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the paths cinesrc reads and writes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range resources {
			if lo.Must(cmd.Flags().GetBool(r.flag)) {
				cmd.Println(r.path())
				return
			}
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		listed := lo.Filter(resources, func(r resource, _ int) bool { return r.listed })
		for i, r := range listed {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", header(r.name), style.Fg(color.Yellow)("--"+r.flag), r.path())
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached and recorded artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		picked := lo.Filter(resources, func(r resource, _ int) bool {
			return r.clearable && lo.Must(cmd.Flags().GetBool(r.flag))
		})
		if len(picked) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, r := range picked {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), r.name))
			err := filesystem.API().RemoveAll(r.path())
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)), r.name)
		}
	},
}
