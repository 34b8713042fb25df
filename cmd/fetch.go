package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/inline"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/mini"
	"github.com/cinesrc/cinesrc/util"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

var pickKinds = []string{"all", "first", "last", "best", "exact=", "index=", "quality="}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addIdentityFlags(fetchCmd)

	fetchCmd.Flags().BoolP("mini", "m", false, "Pick sources with a minimal prompt interface")
	fetchCmd.Flags().BoolP("plain", "p", false, "Start sources without any interface, for scripts")
	fetchCmd.MarkFlagsMutuallyExclusive("mini", "plain")

	fetchCmd.Flags().StringP("pick", "k", "", "Which sources to start in plain mode: "+strings.Join(pickKinds, ", "))
	lo.Must0(fetchCmd.RegisterFlagCompletionFunc("pick", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return pickKinds, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}))
	fetchCmd.Flags().BoolP("json", "j", false, "Print the results as JSON")
	fetchCmd.Flags().BoolP("wait", "w", false, "Wait until every started retrieval completes or fails")
	fetchCmd.Flags().StringP("output", "o", "", "Write the results to this file instead of stdout")

	fetchCmd.AddCommand(fetchSchemaCmd)
	fetchCmd.SetOut(os.Stdout)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [kind] [id]",
	Short: "Start retrievals of catalog sources without the dashboard",
	Example: "  cinesrc fetch movie 550 --plain --pick best --wait\n" +
		"  cinesrc fetch series 1399 -s 1 -e 2 --plain --pick quality=FHD --json\n" +
		"  cinesrc fetch movie 550 --mini",
	Args:              cobra.RangeArgs(0, 2),
	ValidArgsFunction: completionKinds,
	PreRun: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("mini")) && !lo.Must(cmd.Flags().GetBool("plain")) {
			handleErr(errors.New("either --mini or --plain must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		identity, err := identityFrom(cmd, args)
		handleErr(err)

		s, err := newSession(cmd.Context())
		handleErr(err)
		defer s.close()

		erase := util.PrintErasable(fmt.Sprintf("%s Aggregating sources of %s...", icon.Get(icon.Progress), identity))
		c, err := s.builder.Build(cmd.Context(), identity)
		erase()
		handleErr(err)

		retrievals := lifecycle.NewRetrievals(s.manager, c)

		if lo.Must(cmd.Flags().GetBool("mini")) {
			handleErr(mini.Run(cmd.Context(), &mini.Options{
				Out:        cmd.OutOrStdout(),
				Retrievals: retrievals,
			}))
			return
		}

		picker := mo.None[inline.Picker]()
		if pick := lo.Must(cmd.Flags().GetString("pick")); pick != "" {
			kind, value, _ := strings.Cut(pick, "=")
			p, err := inline.ParsePicker(kind, value)
			handleErr(err)
			picker = mo.Some(p)
		}

		var out io.Writer = cmd.OutOrStdout()
		if path := lo.Must(cmd.Flags().GetString("output")); path != "" {
			file, err := filesystem.API().Create(path)
			handleErr(err)
			defer func() { _ = file.Close() }()
			out = file
		}

		handleErr(inline.Run(cmd.Context(), &inline.Options{
			Out:        out,
			Retrievals: retrievals,
			Picker:     picker,
			Json:       lo.Must(cmd.Flags().GetBool("json")),
			Wait:       lo.Must(cmd.Flags().GetBool("wait")),
		}))
	},
}

var fetchSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of fetch --json output",
	Run: func(cmd *cobra.Command, args []string) {
		r := jsonschema.Reflector{DoNotReference: true}
		handleErr(printJson(cmd, r.Reflect(&inline.Output{})))
	},
}
