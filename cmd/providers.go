package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/cinesrc/cinesrc/auth"
	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/icon"
	"github.com/cinesrc/cinesrc/provider"
	"github.com/cinesrc/cinesrc/provider/custom"
	"github.com/cinesrc/cinesrc/style"
	"github.com/cinesrc/cinesrc/util"
	"github.com/cinesrc/cinesrc/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
}

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "Manage built-in and custom catalog providers",
}

func completionCustomProviders(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	paths, err := filesystem.ListExt(where.Providers(), custom.Extension)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return lo.Map(paths, func(path string, _ int) string {
		return util.FileStem(path)
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	providersCmd.AddCommand(providersListCmd)

	providersListCmd.Flags().BoolP("raw", "r", false, "Suppress headers in the output")
	providersListCmd.Flags().BoolP("custom", "c", false, "Display only custom Lua providers")
	providersListCmd.Flags().BoolP("builtin", "b", false, "Display only built-in providers")
	providersListCmd.Flags().BoolP("json", "j", false, "Print the providers as JSON")

	providersListCmd.MarkFlagsMutuallyExclusive("custom", "builtin")
	providersListCmd.SetOut(os.Stdout)
}

type providerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Group   string `json:"group"`
	Custom  bool   `json:"custom"`
	Script  string `json:"script,omitempty"`
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display every registered provider",
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := loadRegistry()
		handleErr(err)

		var (
			onlyBuiltin = lo.Must(cmd.Flags().GetBool("builtin"))
			onlyCustom  = lo.Must(cmd.Flags().GetBool("custom"))
		)

		providers := lo.Filter(registry.Providers(), func(p *provider.Provider, _ int) bool {
			return !(onlyBuiltin && p.IsCustom()) && !(onlyCustom && !p.IsCustom())
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, lo.Map(providers, func(p *provider.Provider, _ int) providerInfo {
				return providerInfo{
					ID:      p.ID,
					Name:    p.Name,
					Variant: string(p.Variant),
					Group:   p.Group,
					Custom:  p.IsCustom(),
					Script:  p.Script,
				}
			})))
			return
		}

		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render

		printGroup := func(header string, list []*provider.Provider) {
			if printHeader {
				cmd.Println(headerStyle(header))
			}
			for _, p := range list {
				ic := icon.Get(icon.Go)
				if p.IsCustom() {
					ic = icon.Get(icon.Lua)
				}
				cmd.Printf("%s %s %s\n", ic, p.Name, style.Faint(p.ID))
			}
		}

		builtins, customs := lo.FilterReject(providers, func(p *provider.Provider, _ int) bool {
			return !p.IsCustom()
		})

		if !onlyCustom {
			printGroup("Builtin:", builtins)
		}
		if !onlyBuiltin && !onlyCustom && printHeader {
			cmd.Println()
		}
		if !onlyBuiltin {
			printGroup("Custom:", customs)
		}
	},
}

func init() {
	providersCmd.AddCommand(providersRemoveCmd)
}

var providersRemoveCmd = &cobra.Command{
	Use:               "remove [name...]",
	Short:             "Uninstall custom Lua providers",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completionCustomProviders,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			path := filepath.Join(where.Providers(), name+custom.Extension)
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	providersCmd.AddCommand(providersGenCmd)

	providersGenCmd.Flags().StringP("name", "n", "", "Display name of the new provider")
	providersGenCmd.Flags().StringP("url", "u", "", "Base URL locators are built from")

	lo.Must0(providersGenCmd.MarkFlagRequired("name"))
	lo.Must0(providersGenCmd.MarkFlagRequired("url"))
	providersGenCmd.SetOut(os.Stdout)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a display name into a provider id.
func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

var providersGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new Lua provider script",
	Run: func(cmd *cobra.Command, args []string) {
		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		name := lo.Must(cmd.Flags().GetString("name"))
		id := slugify(name)
		if id == "" {
			handleErr(fmt.Errorf("cannot derive a provider id from %q", name))
		}

		s := struct {
			ID            string
			Name          string
			URL           string
			Author        string
			ProviderTable string
			RecordsFn     string
		}{
			ID:            id,
			Name:          name,
			URL:           strings.TrimSuffix(lo.Must(cmd.Flags().GetString("url")), "/"),
			Author:        author,
			ProviderTable: constant.ProviderTable,
			RecordsFn:     constant.RecordsFn,
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		tmpl, err := template.New("provider").Funcs(funcMap).Parse(constant.ProviderTemplate)
		handleErr(err)

		target := filepath.Join(where.Providers(), id+custom.Extension)
		if exists, _ := filesystem.API().Exists(target); exists {
			handleErr(fmt.Errorf("%s already exists", target))
		}

		f, err := filesystem.API().Create(target)
		handleErr(err)
		defer func() { _ = f.Close() }()

		handleErr(tmpl.Execute(f, s))
		cmd.Println(target)
	},
}

func init() {
	providersCmd.AddCommand(providersRunCmd)
	addIdentityFlags(providersRunCmd)
	providersRunCmd.Flags().BoolP("json", "j", false, "Print the catalog as JSON")
	providersRunCmd.SetOut(os.Stdout)
}

var providersRunCmd = &cobra.Command{
	Use:   "run [script] [kind] [id]",
	Short: "Build a catalog from a single Lua provider, for testing it",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := provider.LoadScript(args[0])
		handleErr(err)

		registry, err := provider.NewRegistry(p)
		handleErr(err)

		identity, err := identityFrom(cmd, args[1:])
		handleErr(err)

		c, err := catalog.NewBuilder(registry).Build(cmd.Context(), identity)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(printJson(cmd, c.Document()))
			return
		}

		printItems(cmd, c, c.Groups(), c.Items())
		if err := c.Rejections(); err != nil {
			cmd.Printf("\n%s %s\n", style.Fg(color.Yellow)(icon.Get(icon.Fail)), err)
		}
	},
}

func init() {
	providersCmd.AddCommand(providersAuthCmd)
	providersAuthCmd.AddCommand(providersAuthSetCmd)
	providersAuthCmd.AddCommand(providersAuthDeleteCmd)
}

var providersAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage provider API keys stored in the system keyring",
}

var providersAuthSetCmd = &cobra.Command{
	Use:               "set [provider]",
	Short:             "Store the API key of a provider",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionProviderIDs,
	Run: func(cmd *cobra.Command, args []string) {
		var apiKey string
		handleErr(survey.AskOne(&survey.Password{
			Message: "API key for " + args[0],
		}, &apiKey, survey.WithValidator(survey.Required)))

		handleErr(auth.SetKey(args[0], apiKey))
		fmt.Printf("%s stored key of %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(args[0]))
	},
}

var providersAuthDeleteCmd = &cobra.Command{
	Use:               "delete [provider]",
	Aliases:           []string{"remove"},
	Short:             "Forget the API key of a provider",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionProviderIDs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteKey(args[0]))
		fmt.Printf("%s deleted key of %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(args[0]))
	},
}
