package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
)

// Registry is an ordered, immutable set of providers.
// Registration order decides group matching: the first matching provider wins.
type Registry struct {
	providers []*Provider
	byID      map[string]*Provider
	hash      string
}

// NewRegistry compiles every provider and rejects duplicate ids.
func NewRegistry(providers ...*Provider) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Provider, len(providers))}

	for _, p := range providers {
		if err := p.compile(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidProvider, p.ID)
		}

		r.byID[p.ID] = p
		r.providers = append(r.providers, p)
	}

	r.hash = digest(r.providers)
	return r, nil
}

// Providers returns the providers in registration order.
func (r *Registry) Providers() []*Provider {
	return slices.Clone(r.providers)
}

// IDs returns the provider ids in registration order.
func (r *Registry) IDs() []string {
	return lo.Map(r.providers, func(p *Provider, _ int) string { return p.ID })
}

func (r *Registry) Len() int {
	return len(r.providers)
}

// Get finds a provider by id. The error suggests the closest id.
func (r *Registry) Get(id string) (*Provider, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}

	if closest := util.Closest(id, r.IDs()); closest != "" {
		return nil, fmt.Errorf("unknown provider %q, did you mean %q?", id, closest)
	}
	return nil, fmt.Errorf("unknown provider %q", id)
}

// Without returns a registry lacking the given ids. Unknown ids are ignored.
func (r *Registry) Without(ids ...string) (*Registry, error) {
	kept := lo.Filter(r.providers, func(p *Provider, _ int) bool {
		return !lo.Contains(ids, p.ID)
	})
	return NewRegistry(kept...)
}

// Hash is a content address of the registry: any change to a provider's
// templates, params, records, order or script changes it.
func (r *Registry) Hash() string {
	return r.hash
}

type fingerprint struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Variant        string            `json:"variant"`
	Group          string            `json:"group"`
	GroupPrefix    string            `json:"group_prefix"`
	MovieTemplate  string            `json:"movie"`
	SeriesTemplate string            `json:"series"`
	Params         map[string]string `json:"params"`
	Records        []map[string]any  `json:"records"`
	Digest         string            `json:"digest"`
}

func digest(providers []*Provider) string {
	prints := lo.Map(providers, func(p *Provider, _ int) fingerprint {
		return fingerprint{
			ID:             p.ID,
			Name:           p.Name,
			Variant:        string(p.Variant),
			Group:          p.Group,
			GroupPrefix:    p.GroupPrefix,
			MovieTemplate:  p.MovieTemplate,
			SeriesTemplate: p.SeriesTemplate,
			Params:         p.Params,
			Records:        p.Records,
			Digest:         p.Digest,
		}
	})

	// both encodings sort map keys; fmt also covers values JSON refuses, such as NaN
	b, err := json.Marshal(prints)
	if err != nil {
		b = []byte(fmt.Sprintf("%#v", prints))
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
