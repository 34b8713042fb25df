package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/history"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().BoolP("json", "j", false, "Print the history as JSON")
	historyListCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect completed retrievals",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display completed retrievals, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Open().List()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("no completed retrievals"))
			return
		}

		for _, e := range entries {
			cmd.Printf("%s %s %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				e,
				style.Faint(humanize.Time(e.CompletedAt)),
			)
			if e.Completions > 1 {
				cmd.Printf("  %s\n", style.Faint(util.Quantify(e.Completions, "completion", "completions")))
			}
		}
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Pick history entries to forget",
	Run: func(cmd *cobra.Command, args []string) {
		store := history.Open()
		entries, err := store.List()
		handleErr(err)

		if len(entries) == 0 {
			fmt.Println(style.Faint("no completed retrievals"))
			return
		}

		byLabel := lo.SliceToMap(entries, func(e *history.Entry) (string, *history.Entry) {
			return fmt.Sprintf("%s (%s)", e, e.SourceID), e
		})
		labels := lo.Map(entries, func(e *history.Entry, _ int) string {
			return fmt.Sprintf("%s (%s)", e, e.SourceID)
		})

		var picked []string
		handleErr(survey.AskOne(&survey.MultiSelect{
			Message: "Entries to remove",
			Options: labels,
		}, &picked))

		for _, label := range picked {
			handleErr(store.Remove(byLabel[label]))
		}

		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Quantify(len(picked), "entry", "entries"))
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every completed retrieval",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(history.Open().Clear())
		fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
