package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/probe"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	addIdentityFlags(probeCmd)

	probeCmd.Flags().StringSliceP("locator", "l", []string{}, "Probe these locators instead of a catalog")
	probeCmd.Flags().BoolP("json", "j", false, "Print reachability as JSON")

	probeCmd.SetOut(os.Stdout)
}

var probeCmd = &cobra.Command{
	Use:               "probe [kind] [id]",
	Short:             "Check which sources of a catalog are reachable",
	Example:           "  cinesrc probe movie 550\n  cinesrc probe -l https://example.com/embed/550",
	Args:              cobra.RangeArgs(0, 2),
	ValidArgsFunction: completionKinds,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			locators = lo.Must(cmd.Flags().GetStringSlice("locator"))
			labels   = make(map[string]string)
		)

		if len(locators) == 0 {
			identity, err := identityFrom(cmd, args)
			handleErr(err)

			s, err := newSession(cmd.Context())
			handleErr(err)
			defer s.close()

			c, err := s.builder.Build(cmd.Context(), identity)
			handleErr(err)

			for _, item := range c.Items() {
				d := item.Base()
				locators = append(locators, d.Locator)
				labels[d.Locator] = fmt.Sprintf("%s %s", d.Name, style.Faint(d.ID))
			}
			if len(locators) == 0 {
				handleErr(fmt.Errorf("no sources for %s", identity))
			}
		}

		locators = lo.Uniq(locators)

		erase := util.PrintErasable(fmt.Sprintf("%s Probing %s...", icon.Get(icon.Progress), util.Quantify(len(locators), "locator", "locators")))
		reachable := probe.NewFromConfig().ProbeAll(cmd.Context(), locators)
		erase()

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, reachable))
			return
		}

		sort.Strings(locators)
		for _, locator := range locators {
			mark := style.Fg(color.Green)(icon.Get(icon.Success))
			if !reachable[locator] {
				mark = style.Fg(color.Red)(icon.Get(icon.Fail))
			}

			label, ok := labels[locator]
			if !ok {
				label = locator
			}
			cmd.Printf("%s %s\n", mark, label)
		}

		up := lo.CountBy(locators, func(l string) bool { return reachable[l] })
		cmd.Printf("\n%d/%d reachable\n", up, len(locators))
	},
}
