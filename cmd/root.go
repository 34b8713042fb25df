// Package cmd implements the command-line interface of cinesrc.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/tui"
	"github.com/cinesrc/cinesrc/util"
	"github.com/cinesrc/cinesrc/version"
	"github.com/cinesrc/cinesrc/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	addIdentityFlags(rootCmd)

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Save completed retrievals to history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnComplete, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.PersistentFlags().BoolP("probe", "P", false, "Probe every source before starting its retrieval")
	lo.Must0(viper.BindPFlag(key.LifecycleProbeOnStart, rootCmd.PersistentFlags().Lookup("probe")))

	rootCmd.PersistentFlags().StringSliceP("disable", "D", []string{}, "Provider IDs to leave out of the catalog")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("disable", completionProviderIDs))
	lo.Must0(viper.BindPFlag(key.ProvidersDisabled, rootCmd.PersistentFlags().Lookup("disable")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify(context.Background(), os.Stdout)
	})

	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.App + " [kind] [id]",
	Short: "Aggregate playable sources of a movie or episode and drive their retrieval",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Aggregate playable sources of a movie or episode and drive their retrieval"),
	Example:           "  " + constant.App + " movie 550\n  " + constant.App + " series 1399 -s 1 -e 2",
	Args:              cobra.RangeArgs(0, 2),
	ValidArgsFunction: completionKinds,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.SetContext(cmd.Context())
			versionCmd.Run(versionCmd, nil)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		identity, err := identityFrom(cmd, args)
		handleErr(err)

		s, err := newSession(cmd.Context())
		handleErr(err)
		defer s.close()

		handleErr(tui.Run(cmd.Context(), &tui.Options{
			Identity: identity,
			Builder:  s.builder,
			Manager:  s.manager,
		}))
	},
}

// Execute runs the command matching os.Args.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
