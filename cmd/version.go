package cmd

import (
	"os"
	"runtime"
	"strings"

	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
	versionCmd.Flags().BoolP("json", "j", false, "Print build metadata as JSON")
	versionCmd.SetOut(os.Stdout)
}

type buildInfo struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"built_at"`
	BuiltBy  string `json:"built_by"`
	Platform string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := buildInfo{
			App:      constant.App,
			Version:  constant.Version,
			Revision: constant.Revision,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, info))
			return
		}

		cmd.Printf("%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Fg(color.Purple)(info.App))
		for _, row := range []lo.Tuple2[string, string]{
			{A: "Version", B: info.Version},
			{A: "Git Commit", B: info.Revision},
			{A: "Build Date", B: info.BuiltAt},
			{A: "Built By", B: info.BuiltBy},
			{A: "Platform", B: info.Platform},
		} {
			cmd.Printf("  %s%s%s\n", style.Faint(row.A), strings.Repeat(" ", 16-len(row.A)), style.Bold(row.B))
		}

		if ctx := cmd.Context(); ctx != nil {
			version.Notify(ctx, cmd.OutOrStdout())
		}
	},
}
