package provider

import (
	"context"
	"time"

	"github.com/cinesrc/cinesrc/auth"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/internal/cache"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/provider/custom"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
	"github.com/cinesrc/cinesrc/where"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Load assembles the configured registry: built-ins, then custom scripts,
// minus providers.disabled, with API keys injected from the keyring.
//
// A broken script never prevents loading the rest; its error is part of the
// returned multierror while the registry is still returned.
func Load() (*Registry, error) {
	var errs *multierror.Error

	providers := Builtins()
	if viper.GetBool(key.ProvidersCustom) {
		customs, err := Customs()
		errs = multierror.Append(errs, err)
		providers = append(providers, customs...)
	}

	disabled := viper.GetStringSlice(key.ProvidersDisabled)
	providers = lo.Filter(providers, func(p *Provider, _ int) bool {
		return !lo.Contains(disabled, p.ID)
	})

	for _, p := range providers {
		injectKey(p)
	}

	registry, err := NewRegistry(providers...)
	if err != nil {
		return nil, multierror.Append(errs, err).ErrorOrNil()
	}

	return registry, errs.ErrorOrNil()
}

func injectKey(p *Provider) {
	if p.KeyParam == "" {
		return
	}

	apiKey, ok, err := auth.Key(p.ID)
	switch {
	case err != nil:
		log.Warnf("%s: keyring unavailable: %v", p.ID, err)
	case !ok:
		log.Infof("%s: no api key stored, locators are built without %s", p.ID, p.KeyParam)
	default:
		if p.Params == nil {
			p.Params = make(map[string]string)
		}
		p.Params[p.KeyParam] = apiKey
	}
}

// Customs loads every script under where.Providers(). Scripts that fail to
// load are skipped and reported together, prefixed by their path.
func Customs() ([]*Provider, error) {
	paths, err := filesystem.ListExt(where.Providers(), custom.Extension)
	if err != nil {
		return nil, err
	}

	var (
		providers []*Provider
		errs      *multierror.Error
	)

	for _, path := range paths {
		def, err := custom.Load(path)
		if err != nil {
			log.Warnf("custom provider %s: %v", path, err)
			errs = multierror.Append(errs, multierror.Prefix(err, "["+path+"]"))
			continue
		}

		providers = append(providers, fromDefinition(def))
	}

	return providers, errs.ErrorOrNil()
}

// LoadScript loads a single custom provider from path.
func LoadScript(path string) (*Provider, error) {
	def, err := custom.Load(path)
	if err != nil {
		return nil, err
	}

	p := fromDefinition(def)
	injectKey(p)
	return p, nil
}

func fromDefinition(def *custom.Definition) *Provider {
	return &Provider{
		ID:             def.ID,
		Name:           def.Name,
		Variant:        source.Variant(def.Variant),
		Group:          def.Group,
		GroupPrefix:    def.GroupPrefix,
		MovieTemplate:  def.Movie,
		SeriesTemplate: def.Series,
		Params:         def.Params,
		KeyParam:       def.KeyParam,
		Script:         def.Path,
		Digest:         def.Digest,
		Contribute:     cached(def.Digest, def.Records),
	}
}

// cached memoizes a script's records on disk for providers.cache_ttl_minutes.
// A zero ttl disables it. Only successful results are stored.
func cached(digest string, contribute Contributor) Contributor {
	return func(ctx context.Context, identity content.Identity, locator string) ([]validate.Record, error) {
		ttl := time.Duration(viper.GetInt(key.ProvidersCacheTTL)) * time.Minute
		if ttl <= 0 || digest == "" {
			return contribute(ctx, identity, locator)
		}

		id := cache.Key(digest, identity.Key(), locator)

		var records []validate.Record
		if cache.Read(id, ttl, &records) {
			return records, nil
		}

		records, err := contribute(ctx, identity, locator)
		if err != nil {
			return nil, err
		}

		if err := cache.Write(id, records); err != nil {
			log.Warnf("cache records of %s: %v", identity, err)
		}
		return records, nil
	}
}
