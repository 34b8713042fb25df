package catalog

import (
	"fmt"

	"github.com/cinesrc/cinesrc/content"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes catalogs. Entries are keyed by content identity and registry
// hash, so editing any provider invalidates what was built from it.
type Cache struct {
	entries *lru.Cache[string, *Catalog]
}

// NewCache returns a cache holding at most size catalogs.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *Catalog](size)
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// CacheKey is the key a catalog of identity built from a registry with hash is stored under.
func CacheKey(identity content.Identity, hash string) string {
	return identity.Key() + "@" + hash
}

func (c *Cache) Get(identity content.Identity, hash string) (*Catalog, bool) {
	return c.entries.Get(CacheKey(identity, hash))
}

// Add stores catalog and reports whether an older entry was evicted.
func (c *Cache) Add(catalog *Catalog) bool {
	return c.entries.Add(CacheKey(catalog.identity, catalog.registryHash), catalog)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}
