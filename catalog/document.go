package catalog

import (
	"time"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/source"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

// Document is the serializable form of a catalog.
type Document struct {
	Content  content.Identity `json:"content"`
	Registry string           `json:"registry" jsonschema:"description=hash of the provider registry"`
	BuiltAt  time.Time        `json:"built_at"`
	Groups   []GroupDocument  `json:"groups"`
	Rejected []string         `json:"rejected,omitempty"`
}

type GroupDocument struct {
	Name      string   `json:"name"`
	Providers []string `json:"providers,omitempty"`
	Entries   []Entry  `json:"entries"`
}

// Entry is one catalog item. Download and Torrent are set for their variant only.
type Entry struct {
	Variant     source.Variant     `json:"variant" jsonschema:"enum=stream,enum=download,enum=torrent"`
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Locator     string             `json:"locator"`
	Kind        source.Kind        `json:"kind"`
	Quality     source.Quality     `json:"quality"`
	Reliability source.Reliability `json:"reliability"`
	AdFree      bool               `json:"ad_free"`
	Language    string             `json:"language"`
	Subtitles   []string           `json:"subtitles,omitempty"`
	Download    *DownloadDetails   `json:"download,omitempty"`
	Torrent     *TorrentDetails    `json:"torrent,omitempty"`
}

type DownloadDetails struct {
	Format            source.Format `json:"format"`
	FileSize          string        `json:"file_size"`
	Codec             string        `json:"codec,omitempty"`
	EstimatedDuration string        `json:"estimated_duration,omitempty"`
}

type TorrentDetails struct {
	Magnet   string        `json:"magnet"`
	File     string        `json:"file,omitempty"`
	Seeders  int           `json:"seeders"`
	Leechers int           `json:"leechers"`
	Health   source.Health `json:"health"`
	Trusted  bool          `json:"trusted"`
}

// NewEntry flattens an item.
func NewEntry(item source.Item) Entry {
	d := item.Base()
	e := Entry{
		Variant:     item.Variant(),
		ID:          d.ID,
		Name:        d.Name,
		Locator:     d.Locator,
		Kind:        d.Kind,
		Quality:     d.Quality,
		Reliability: d.Reliability,
		AdFree:      d.AdFree,
		Language:    d.Language,
		Subtitles:   d.Subtitles(),
	}

	switch v := item.(type) {
	case source.DownloadOption:
		e.Download = &DownloadDetails{
			Format:            v.Format,
			FileSize:          v.FileSizeLabel,
			Codec:             v.CodecLabel,
			EstimatedDuration: v.EstimatedDuration,
		}
	case source.TorrentSource:
		e.Torrent = &TorrentDetails{
			Magnet:   v.Magnet,
			File:     v.File.OrEmpty(),
			Seeders:  v.Seeders,
			Leechers: v.Leechers,
			Health:   v.Health,
			Trusted:  v.Trusted,
		}
	}

	return e
}

// Document returns the catalog grouped for serialization.
func (c *Catalog) Document() Document {
	doc := Document{
		Content:  c.identity,
		Registry: c.registryHash,
		BuiltAt:  c.builtAt,
		Groups:   make([]GroupDocument, 0, len(c.groups)),
	}

	for _, g := range c.Groups() {
		doc.Groups = append(doc.Groups, GroupDocument{
			Name:      g.Name,
			Providers: g.Providers,
			Entries: lo.Map(c.GroupItems(g.Name), func(item source.Item, _ int) Entry {
				return NewEntry(item)
			}),
		})
	}

	if c.rejections != nil {
		doc.Rejected = lo.Map(c.rejections.Errors, func(err error, _ int) string { return err.Error() })
	}

	return doc
}

// Schema describes Document.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return r.Reflect(&Document{})
}
