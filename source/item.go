// Package source defines the validated, immutable records a catalog is made of.
//
// A catalog entry is one of three variants sharing a common Descriptor:
// a stream (Descriptor), a whole-file download (DownloadOption) or a torrent
// (TorrentSource). Item is the closed union over them.
package source

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/mo"
)

// Variant tags the concrete type behind an Item.
type Variant string

const (
	VariantStream   Variant = "stream"
	VariantDownload Variant = "download"
	VariantTorrent  Variant = "torrent"
)

// Variants lists every variant.
func Variants() []Variant {
	return []Variant{VariantStream, VariantDownload, VariantTorrent}
}

// ParseVariant resolves a variant name.
func ParseVariant(s string) (Variant, bool) {
	v := Variant(normalize(s))
	return v, slices.Contains(Variants(), v)
}

// Item is one retrievable option of a catalog.
// It is implemented by Descriptor, DownloadOption and TorrentSource only.
type Item interface {
	// Base returns the fields common to every variant.
	Base() Descriptor
	Variant() Variant
	// Validate checks the structural invariants of the item.
	Validate() error

	sealed()
}

// ErrMalformed is wrapped by every Validate error.
var ErrMalformed = errors.New("malformed source")

// Descriptor is a streamable option and the common part of every variant.
type Descriptor struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Locator     string      `json:"locator"`
	Kind        Kind        `json:"kind"`
	Quality     Quality     `json:"quality"`
	Reliability Reliability `json:"reliability"`
	AdFree      bool        `json:"ad_free"`
	Language    string      `json:"language"`

	subtitles []string
}

// NewDescriptor returns a descriptor owning a private copy of subtitles.
func NewDescriptor(d Descriptor, subtitles []string) Descriptor {
	d.subtitles = slices.Clone(subtitles)
	return d
}

// Subtitles returns the subtitle languages in declared order.
func (d Descriptor) Subtitles() []string {
	return slices.Clone(d.subtitles)
}

func (d Descriptor) Base() Descriptor { return d }
func (Descriptor) Variant() Variant  { return VariantStream }
func (Descriptor) sealed()           {}

func (d Descriptor) Validate() error {
	required := []struct{ field, value string }{
		{"id", d.ID},
		{"name", d.Name},
		{"locator", d.Locator},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is blank", ErrMalformed, r.field)
		}
	}

	switch {
	case !d.Kind.Known():
		return fmt.Errorf("%w: %s", ErrMalformed, d.Kind)
	case !d.Quality.Known():
		return fmt.Errorf("%w: %s", ErrMalformed, d.Quality)
	case !d.Reliability.Known():
		return fmt.Errorf("%w: %s", ErrMalformed, d.Reliability)
	}

	return nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Name, d.Quality, d.ID)
}

// DownloadOption is a whole-file retrieval.
type DownloadOption struct {
	Descriptor

	Format            Format `json:"format"`
	FileSizeLabel     string `json:"file_size"`
	CodecLabel        string `json:"codec"`
	EstimatedDuration string `json:"estimated_duration"`
}

func (d DownloadOption) Base() Descriptor { return d.Descriptor }
func (DownloadOption) Variant() Variant  { return VariantDownload }

func (d DownloadOption) Validate() error {
	if err := d.Descriptor.Validate(); err != nil {
		return err
	}
	if !d.Format.Known() {
		return fmt.Errorf("%w: %s", ErrMalformed, d.Format)
	}
	return nil
}

// TorrentSource is a retrieval from a torrent swarm.
// Descriptor.Locator holds the file locator when there is one, the magnet otherwise.
type TorrentSource struct {
	Descriptor

	Magnet   string            `json:"magnet"`
	File     mo.Option[string] `json:"file"`
	Seeders  int               `json:"seeders"`
	Leechers int               `json:"leechers"`
	Health   Health            `json:"health"`
	Trusted  bool              `json:"trusted"`
}

func (t TorrentSource) Base() Descriptor { return t.Descriptor }
func (TorrentSource) Variant() Variant  { return VariantTorrent }

func (t TorrentSource) Validate() error {
	if err := t.Descriptor.Validate(); err != nil {
		return err
	}

	switch {
	case !strings.HasPrefix(t.Magnet, "magnet:"):
		return fmt.Errorf("%w: magnet %q", ErrMalformed, t.Magnet)
	case t.Seeders < 0 || t.Leechers < 0:
		return fmt.Errorf("%w: negative swarm counts", ErrMalformed)
	case !t.Health.Known():
		return fmt.Errorf("%w: %s", ErrMalformed, t.Health)
	}

	return nil
}

// Ratio is seeders per leecher. A swarm without leechers reports its seeders.
func (t TorrentSource) Ratio() float64 {
	if t.Leechers == 0 {
		return float64(t.Seeders)
	}
	return float64(t.Seeders) / float64(t.Leechers)
}
