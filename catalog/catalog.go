// Package catalog aggregates provider records into a validated, grouped catalog.
package catalog

import (
	"slices"
	"time"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/source"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// OtherGroup collects items matching no provider prefix.
const OtherGroup = "other"

// Group is a named partition of the catalog. It references items by id.
type Group struct {
	Name string `json:"name"`
	// Providers are the ids of the providers whose prefix routed items here.
	Providers []string `json:"providers"`
	IDs       []string `json:"ids"`
}

// Catalog is the immutable result of one aggregation run. It is safe for
// concurrent reads; every accessor returns copies.
type Catalog struct {
	identity     content.Identity
	registryHash string
	builtAt      time.Time

	items      []source.Item
	index      map[string]int
	groups     []Group
	groupOf    map[string]string
	rejections *multierror.Error
}

// Identity is the content the catalog was built for.
func (c *Catalog) Identity() content.Identity {
	return c.identity
}

// RegistryHash is the hash of the registry the catalog was built from.
func (c *Catalog) RegistryHash() string {
	return c.registryHash
}

// BuiltAt is when aggregation finished.
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

// Len is the number of valid items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Empty reports whether no provider yielded a valid item.
func (c *Catalog) Empty() bool {
	return len(c.items) == 0
}

// Items returns every item in build order.
func (c *Catalog) Items() []source.Item {
	return slices.Clone(c.items)
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id string) (source.Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.items[i], true
}

// Streams returns the stream descriptors.
func (c *Catalog) Streams() []source.Descriptor {
	return variants[source.Descriptor](c.items)
}

// Downloads returns the download options.
func (c *Catalog) Downloads() []source.DownloadOption {
	return variants[source.DownloadOption](c.items)
}

// Torrents returns the torrent sources.
func (c *Catalog) Torrents() []source.TorrentSource {
	return variants[source.TorrentSource](c.items)
}

func variants[T source.Item](items []source.Item) []T {
	return lo.FilterMap(items, func(item source.Item, _ int) (T, bool) {
		t, ok := item.(T)
		return t, ok
	})
}

// Groups returns the partition in registration order, "other" last.
// Only groups holding at least one item are listed.
func (c *Catalog) Groups() []Group {
	return lo.Map(c.groups, func(g Group, _ int) Group {
		return Group{Name: g.Name, Providers: slices.Clone(g.Providers), IDs: slices.Clone(g.IDs)}
	})
}

// Group returns a group by name.
func (c *Catalog) Group(name string) (Group, bool) {
	return lo.Find(c.Groups(), func(g Group) bool { return g.Name == name })
}

// GroupOf returns the name of the group holding id.
func (c *Catalog) GroupOf(id string) (string, bool) {
	name, ok := c.groupOf[id]
	return name, ok
}

// GroupItems returns the items of a group in build order.
func (c *Catalog) GroupItems(name string) []source.Item {
	g, ok := c.Group(name)
	if !ok {
		return nil
	}
	return lo.Map(g.IDs, func(id string, _ int) source.Item {
		return c.items[c.index[id]]
	})
}

// Rejections aggregates every record and provider failure of the run, or nil.
func (c *Catalog) Rejections() error {
	return c.rejections.ErrorOrNil()
}

// RejectedCount is the number of failures in Rejections.
func (c *Catalog) RejectedCount() int {
	if c.rejections == nil {
		return 0
	}
	return len(c.rejections.Errors)
}
