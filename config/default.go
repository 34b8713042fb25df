// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/cinesrc/cinesrc/color"
	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ProvidersDisabled, []string{}, "Provider IDs excluded from catalog aggregation.\nType \"cinesrc providers list\" to show available providers")
	register(key.ProvidersCustom, true, "Load custom Lua providers from the providers directory")
	register(key.ProvidersCacheTTL, 60, "Minutes the records of custom providers are cached on disk.\n0 disables the cache")
	register(key.CatalogCacheSize, 32, "Number of catalogs kept in memory, evicted least recently used first")
	register(key.CatalogFilterSuggestions, true, "Suggest previously used catalog filters")
	register(key.ProbeAttempts, 3, "Maximum reachability attempts per locator")
	register(key.ProbeBaseDelay, 200, "Delay in milliseconds before the second attempt.\nDoubles after every failed attempt")
	register(key.ProbeTimeout, 5000, "Timeout in milliseconds of a single reachability attempt")
	register(key.ProbeConcurrency, 8, "Maximum number of locators probed at once")
	register(key.ProbeFailOpen, true, "Report locators as reachable when no checker handles their scheme")
	register(key.ProbeTLSFingerprint, false, "Probe over a client that mimics a browser TLS fingerprint")
	register(key.LifecycleTickInterval, 500, "Milliseconds between two progress ticks of a retrieval.\n0 disables the automatic tick driver")
	register(key.LifecycleIncrementMin, 2, "Smallest progress increment per tick, in percent")
	register(key.LifecycleIncrementMax, 8, "Largest progress increment per tick, in percent")
	register(key.LifecycleProbeOnStart, false, "Probe a source before starting its retrieval")
	register(key.HistorySaveOnComplete, true, "Save completed retrievals to history")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.TUIShowLocators, true, "Show locators under dashboard items")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for a newer release when running commands")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
