package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/query"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	addIdentityFlags(catalogCmd)

	catalogCmd.Flags().BoolP("json", "j", false, "Print the catalog as JSON")
	catalogCmd.Flags().Bool("schema", false, "Print the JSON schema of the catalog document")
	catalogCmd.Flags().StringP("group", "g", "", "Only show the sources of this provider group")
	catalogCmd.Flags().StringP("filter", "f", "", "Only show sources whose name fuzzily matches")
	lo.Must0(catalogCmd.RegisterFlagCompletionFunc("filter", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))

	catalogCmd.SetOut(os.Stdout)
}

var catalogCmd = &cobra.Command{
	Use:               "catalog [kind] [id]",
	Short:             "Build and print the source catalog of a movie or episode",
	Example:           "  cinesrc catalog movie 550 --group EmbedHub\n  cinesrc catalog series 1399 -s 1 -e 2 --json",
	Args:              cobra.RangeArgs(0, 2),
	ValidArgsFunction: completionKinds,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(printJson(cmd, catalog.Schema()))
			return
		}

		identity, err := identityFrom(cmd, args)
		handleErr(err)

		s, err := newSession(cmd.Context())
		handleErr(err)
		defer s.close()

		erase := util.PrintErasable(fmt.Sprintf("%s Aggregating sources of %s...", icon.Get(icon.Progress), identity))
		c, err := s.builder.Build(cmd.Context(), identity)
		erase()
		handleErr(err)

		var (
			group  = lo.Must(cmd.Flags().GetString("group"))
			filter = lo.Must(cmd.Flags().GetString("filter"))
		)

		if lo.Must(cmd.Flags().GetBool("json")) && group == "" && filter == "" {
			handleErr(printJson(cmd, c.Document()))
			return
		}

		groups := c.Groups()
		if group != "" {
			g, ok := c.Group(group)
			if !ok {
				handleErr(fmt.Errorf("no group named %s, have %s", style.Fg(color.Red)(group), style.Fg(color.Yellow)(util.Closest(group, groupNames(groups)))))
			}
			groups = []catalog.Group{g}
		}

		var shown []source.Item
		for _, g := range groups {
			items := c.GroupItems(g.Name)
			if filter != "" {
				items = lo.Filter(items, func(item source.Item, _ int) bool {
					return fuzzy.MatchNormalizedFold(filter, item.Base().Name)
				})
			}
			shown = append(shown, items...)
		}

		if filter != "" {
			if len(shown) == 0 {
				if suggestion, ok := query.Suggest(filter).Get(); ok && suggestion != filter {
					cmd.Printf("%s nothing matched, did you mean %s?\n", icon.Get(icon.Question), style.Fg(color.Yellow)(suggestion))
				}
			} else if err := query.Remember(filter, 1); err != nil {
				handleErr(err)
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, lo.Map(shown, func(item source.Item, _ int) catalog.Entry {
				return catalog.NewEntry(item)
			})))
			return
		}

		printItems(cmd, c, groups, shown)

		if n := c.RejectedCount(); n > 0 {
			cmd.Printf("\n%s %s\n", style.Fg(color.Yellow)(icon.Get(icon.Fail)), util.Quantify(n, "record rejected", "records rejected"))
		}
	},
}

func groupNames(groups []catalog.Group) []string {
	return lo.Map(groups, func(g catalog.Group, _ int) string { return g.Name })
}

func printItems(cmd *cobra.Command, c *catalog.Catalog, groups []catalog.Group, shown []source.Item) {
	visible := lo.SliceToMap(shown, func(item source.Item) (string, bool) {
		return item.Base().ID, true
	})

	headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render
	for _, g := range groups {
		items := lo.Filter(c.GroupItems(g.Name), func(item source.Item, _ int) bool {
			return visible[item.Base().ID]
		})
		if len(items) == 0 {
			continue
		}

		cmd.Println(headerStyle(g.Name))
		for _, item := range items {
			d := item.Base()
			cmd.Printf("  %s %s %s %s\n",
				style.Quality(d.Quality),
				d.Name,
				style.Faint(string(item.Variant())),
				style.Fg(color.Yellow)(d.ID),
			)
		}
	}
}

func printJson(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
