package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/provider"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Builder aggregates the records of a registry into catalogs.
type Builder struct {
	registry *provider.Registry
	cache    *Cache
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithCache memoizes catalogs by content identity and registry hash.
func WithCache(cache *Cache) Option {
	return func(b *Builder) {
		b.cache = cache
	}
}

// WithClock replaces time.Now for BuiltAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder returns a builder over registry.
func NewBuilder(registry *provider.Registry, opts ...Option) *Builder {
	b := &Builder{registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry is the registry the builder aggregates.
func (b *Builder) Registry() *provider.Registry {
	return b.registry
}

// Build aggregates every provider for identity. Providers are visited in
// registration order; a failing provider or a malformed record is recorded
// in Rejections and skipped. Only an invalid identity or a cancelled
// context fails the build.
func (b *Builder) Build(ctx context.Context, identity content.Identity) (*Catalog, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	hash := b.registry.Hash()
	if b.cache != nil {
		if cached, ok := b.cache.Get(identity, hash); ok {
			log.Debugf("catalog cache hit for %s", identity.Key())
			return cached, nil
		}
	}

	var (
		items      []source.Item
		rejections *multierror.Error
	)

	for _, p := range b.registry.Providers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		valid, err := b.contribute(ctx, p, identity)
		if errors.Is(err, provider.ErrUnsupportedKind) {
			log.Debugf("provider %s does not serve %s", p.ID, identity.Kind)
			continue
		}

		rejections = multierror.Append(rejections, multierror.Prefix(err, fmt.Sprintf("[%s]", p.ID)))
		items = append(items, valid...)
	}

	c := &Catalog{
		identity:     identity,
		registryHash: hash,
		builtAt:      b.now(),
		index:        make(map[string]int),
		groupOf:      make(map[string]string),
	}

	for _, item := range items {
		id := item.Base().ID
		if _, dup := c.index[id]; dup {
			rejections = multierror.Append(rejections, &validate.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("duplicate id %q", id),
			})
			continue
		}

		c.index[id] = len(c.items)
		c.items = append(c.items, item)
	}

	c.groups = partition(b.registry.Providers(), c.items)
	for _, g := range c.groups {
		for _, id := range g.IDs {
			c.groupOf[id] = g.Name
		}
	}
	c.rejections = rejections

	log.With(logrus.Fields{
		"content":  identity.Key(),
		"items":    c.Len(),
		"groups":   len(c.groups),
		"rejected": c.RejectedCount(),
	}).Info("catalog built")

	if b.cache != nil {
		b.cache.Add(c)
	}

	return c, nil
}

// contribute returns the valid items of one provider. The error aggregates
// the provider's rejected records, or is the failure of the provider itself.
func (b *Builder) contribute(ctx context.Context, p *provider.Provider, identity content.Identity) ([]source.Item, error) {
	locator, err := provider.BuildLocator(p, identity)
	if err != nil {
		return nil, err
	}

	raws, err := p.RawRecords(ctx, identity, locator)
	if err != nil {
		log.With(logrus.Fields{"provider": p.ID, "content": identity.Key()}).Warn(err)
		return nil, fmt.Errorf("contribute: %w", err)
	}

	records := lo.Map(raws, func(raw validate.Record, i int) validate.Record {
		return merge(p, raw, locator, i)
	})

	valid, rejected := validate.Batch(records, p.Variant)

	var result *multierror.Error
	return valid, multierror.Append(result, rejected...).ErrorOrNil()
}

// merge completes a raw record with what the provider knows: a namespaced id,
// the built locator and, for torrents, the magnet the locator carries.
func merge(p *provider.Provider, raw validate.Record, locator string, index int) validate.Record {
	if raw == nil {
		return nil
	}

	record := make(validate.Record, len(raw)+2)
	for k, v := range raw {
		record[k] = v
	}

	switch id := raw["id"].(type) {
	case nil:
		record["id"] = p.GroupPrefix + strconv.Itoa(index+1)
	case string:
		id = strings.TrimSpace(id)
		if id != "" && !strings.HasPrefix(id, p.GroupPrefix) {
			record["id"] = p.GroupPrefix + id
		}
	}

	if !present(record, "locator", "url") {
		target := locator
		if params, ok := stringParams(raw["params"]); ok {
			if withParams, err := provider.WithParams(locator, params); err == nil {
				target = withParams
			} else {
				log.Warnf("provider %s: record %d: %s", p.ID, index, err)
			}
		}
		record["locator"] = target
	}

	if p.Variant == source.VariantTorrent && !present(record, "magnet") {
		if l, ok := record["locator"].(string); ok && strings.HasPrefix(l, "magnet:") {
			record["magnet"] = l
		}
	}

	return record
}

func present(record validate.Record, names ...string) bool {
	for _, name := range names {
		if v, ok := record[name]; ok && v != nil {
			return true
		}
	}
	return false
}

func stringParams(v any) (map[string]string, bool) {
	switch params := v.(type) {
	case map[string]string:
		return params, len(params) > 0
	case map[string]any:
		out := make(map[string]string, len(params))
		for k, value := range params {
			switch value := value.(type) {
			case string:
				out[k] = value
			case float64, int, int64, bool:
				out[k] = fmt.Sprint(value)
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// partition routes every item to the group of the first provider whose prefix
// matches its id, or to OtherGroup. Providers declaring the same group name
// share one group.
func partition(providers []*provider.Provider, items []source.Item) []Group {
	var (
		groups []Group
		byName = make(map[string]int)
		other  = Group{Name: OtherGroup}
	)

	for _, item := range items {
		id := item.Base().ID

		p, ok := lo.Find(providers, func(p *provider.Provider) bool { return p.Matches(id) })
		if !ok {
			other.IDs = append(other.IDs, id)
			continue
		}

		i, exists := byName[p.Group]
		if !exists {
			i = len(groups)
			byName[p.Group] = i
			groups = append(groups, Group{Name: p.Group})
		}

		g := &groups[i]
		g.IDs = append(g.IDs, id)
		if !lo.Contains(g.Providers, p.ID) {
			g.Providers = append(g.Providers, p.ID)
		}
	}

	// groups appear in registration order of their first provider
	rank := make(map[string]int, len(providers))
	for i, p := range providers {
		if _, ok := rank[p.Group]; !ok {
			rank[p.Group] = i
		}
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(rank[a.Name], rank[b.Name])
	})

	if len(other.IDs) == 0 {
		return groups
	}

	if _, i, ok := lo.FindIndexOf(groups, func(g Group) bool { return g.Name == OtherGroup }); ok {
		groups[i].IDs = append(groups[i].IDs, other.IDs...)
		return groups
	}
	return append(groups, other)
}
