// Package provider declares where catalog entries come from.
//
// A Provider owns a locator template per content kind and the raw records it
// contributes. Records are untyped on purpose: they are validated by the
// catalog builder, never trusted here.
package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strings"
	"text/template"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
)

// Contributor produces the raw records of a provider for one content item.
// Custom Lua providers implement it; built-ins declare static Records instead.
type Contributor func(ctx context.Context, identity content.Identity, locator string) ([]validate.Record, error)

// Provider is one upstream source of catalog entries.
type Provider struct {
	ID   string
	Name string
	// Variant is the type every record of this provider is validated as.
	Variant source.Variant

	// Group names the provider group of its entries; defaults to Name.
	Group string
	// GroupPrefix is matched against entry ids to partition the catalog; defaults to ID + "_".
	GroupPrefix string

	MovieTemplate  string
	SeriesTemplate string
	// Params are appended to every locator, in key order.
	Params map[string]string
	// KeyParam, when set, receives the provider's API key from the keyring.
	KeyParam string

	// Records is the static metadata merged with the locator.
	Records []validate.Record
	// Contribute overrides Records when set.
	Contribute Contributor

	// Script is the path of the Lua file of a custom provider.
	Script string
	// Digest identifies the script content for cache keys.
	Digest string

	movie, series *template.Template
}

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ErrInvalidProvider is wrapped by every compile error.
var ErrInvalidProvider = errors.New("invalid provider")

// compile checks the declaration, fills defaults and parses the templates.
func (p *Provider) compile() error {
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("%w: id %q must be lowercase alphanumerics and dashes", ErrInvalidProvider, p.ID)
	}

	if strings.TrimSpace(p.Name) == "" {
		p.Name = p.ID
	}

	if p.Variant == "" {
		p.Variant = source.VariantStream
	}
	if _, ok := source.ParseVariant(string(p.Variant)); !ok {
		return fmt.Errorf("%w: %s has unknown variant %q", ErrInvalidProvider, p.ID, p.Variant)
	}

	if p.Group == "" {
		p.Group = p.Name
	}
	if p.GroupPrefix == "" {
		p.GroupPrefix = p.ID + "_"
	}

	if p.MovieTemplate == "" && p.SeriesTemplate == "" {
		return fmt.Errorf("%w: %s declares no locator template", ErrInvalidProvider, p.ID)
	}

	var err error
	if p.movie, err = parseTemplate(p.ID+"/movie", p.MovieTemplate); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProvider, p.ID, err)
	}
	if p.series, err = parseTemplate(p.ID+"/series", p.SeriesTemplate); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProvider, p.ID, err)
	}

	p.Params = maps.Clone(p.Params)
	return nil
}

// Supports reports whether the provider has a template for kind.
func (p *Provider) Supports(kind content.Kind) bool {
	if kind == content.Series {
		return p.SeriesTemplate != ""
	}
	return p.MovieTemplate != ""
}

// IsCustom reports whether the provider comes from a Lua script.
func (p *Provider) IsCustom() bool {
	return p.Script != ""
}

// RawRecords returns the records the provider contributes for identity.
// Static records are deep enough copies that callers may mutate them.
func (p *Provider) RawRecords(ctx context.Context, identity content.Identity, locator string) ([]validate.Record, error) {
	if p.Contribute != nil {
		return p.Contribute(ctx, identity, locator)
	}

	records := make([]validate.Record, len(p.Records))
	for i, r := range p.Records {
		records[i] = maps.Clone(r)
	}
	return records, nil
}

// Matches reports whether an entry id belongs to this provider's group.
func (p *Provider) Matches(id string) bool {
	return strings.HasPrefix(id, p.GroupPrefix)
}

func (p *Provider) String() string {
	return p.Name
}
