package validate

import (
	"strings"

	"github.com/cinesrc/cinesrc/source"
	"github.com/dustin/go-humanize"
	"github.com/samber/mo"
)

// Defaults applied to optional fields. None of them claims more quality or
// trust than a record declares.
const (
	DefaultLanguage = "unknown"
	DefaultQuality  = source.QualitySD
	DefaultKind     = source.KindContainer
)

// One validates one untrusted record as the given variant.
func One(raw Record, target source.Variant) (source.Item, error) {
	if raw == nil {
		return nil, fieldError("record", "missing")
	}

	var (
		item source.Item
		err  error
	)

	switch target {
	case source.VariantStream:
		item, err = descriptor(raw)
	case source.VariantDownload:
		item, err = download(raw)
	case source.VariantTorrent:
		item, err = torrent(raw)
	default:
		return nil, fieldError("variant", "unknown variant %q", target)
	}

	if err != nil {
		return nil, err
	}
	return item, nil
}

func descriptor(raw Record) (source.Descriptor, error) {
	locator, err := requiredString(raw, "locator", "url")
	if err != nil {
		return source.Descriptor{}, err
	}

	return descriptorWithLocator(raw, locator)
}

func descriptorWithLocator(raw Record, locator string) (d source.Descriptor, err error) {
	if d.ID, err = requiredString(raw, "id"); err != nil {
		return
	}
	if d.Name, err = requiredString(raw, "name"); err != nil {
		return
	}
	d.Locator = locator

	if d.Kind, err = optionalEnum(raw, DefaultKind, source.ParseKind, "kind"); err != nil {
		return
	}
	if d.Quality, err = optionalEnum(raw, DefaultQuality, source.ParseQuality, "quality"); err != nil {
		return
	}
	if d.Reliability, err = optionalEnum(raw, source.ReliabilityFast, source.ParseReliability, "reliability"); err != nil {
		return
	}
	if d.AdFree, err = optionalBool(raw, "ad_free", "adFree"); err != nil {
		return
	}
	if d.Language, err = optionalString(raw, DefaultLanguage, "language", "lang"); err != nil {
		return
	}

	subtitles, err := optionalStrings(raw, "subtitles", "subtitle_languages", "subtitleLanguages")
	if err != nil {
		return
	}

	return source.NewDescriptor(d, subtitles), nil
}

func download(raw Record) (source.DownloadOption, error) {
	base, err := descriptor(raw)
	if err != nil {
		return source.DownloadOption{}, err
	}

	option := source.DownloadOption{Descriptor: base}
	if option.Format, err = optionalEnum(raw, source.FormatMP4, source.ParseFormat, "format"); err != nil {
		return source.DownloadOption{}, err
	}
	if option.FileSizeLabel, err = optionalString(raw, "", "file_size", "fileSize", "size"); err != nil {
		return source.DownloadOption{}, err
	}
	if option.FileSizeLabel == "" {
		if option.FileSizeLabel, err = sizeLabel(raw); err != nil {
			return source.DownloadOption{}, err
		}
	}
	if option.CodecLabel, err = optionalString(raw, "", "codec"); err != nil {
		return source.DownloadOption{}, err
	}
	if option.EstimatedDuration, err = optionalString(raw, "", "estimated_duration", "estimatedDuration", "duration"); err != nil {
		return source.DownloadOption{}, err
	}

	return option, nil
}

// sizeLabel formats a byte count declared as a number.
func sizeLabel(raw Record) (string, error) {
	v, name, ok := lookup(raw, "size_bytes", "sizeBytes")
	if !ok {
		return "", nil
	}

	n, err := number(name, v)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fieldError(name, "must not be negative")
	}

	return humanize.Bytes(uint64(n)), nil
}

func torrent(raw Record) (source.TorrentSource, error) {
	magnet, err := requiredString(raw, "magnet", "magnet_locator", "magnetLocator")
	if err != nil {
		return source.TorrentSource{}, err
	}
	if !strings.HasPrefix(strings.ToLower(magnet), "magnet:") {
		return source.TorrentSource{}, fieldError("magnet", "not a magnet link")
	}

	file, err := optionalString(raw, "", "file", "file_locator", "fileLocator")
	if err != nil {
		return source.TorrentSource{}, err
	}

	locator := magnet
	option := mo.None[string]()
	if file != "" {
		locator = file
		option = mo.Some(file)
	}

	base, err := descriptorWithLocator(raw, locator)
	if err != nil {
		return source.TorrentSource{}, err
	}

	t := source.TorrentSource{Descriptor: base, Magnet: magnet, File: option}
	if t.Seeders, err = optionalCount(raw, "seeders", "seeds"); err != nil {
		return source.TorrentSource{}, err
	}
	if t.Leechers, err = optionalCount(raw, "leechers", "peers"); err != nil {
		return source.TorrentSource{}, err
	}
	if t.Health, err = optionalEnum(raw, source.HealthOf(t.Seeders), source.ParseHealth, "health"); err != nil {
		return source.TorrentSource{}, err
	}
	if t.Trusted, err = optionalBool(raw, "trusted"); err != nil {
		return source.TorrentSource{}, err
	}

	return t, nil
}
