package provider

import (
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
)

// Builtins returns freshly allocated built-in providers, in priority order.
func Builtins() []*Provider {
	return []*Provider{
		{
			ID:             "embedhub",
			Name:           "EmbedHub",
			Variant:        source.VariantStream,
			MovieTemplate:  "https://embedhub.example/embed/movie/{{ .ID }}",
			SeriesTemplate: "https://embedhub.example/embed/tv/{{ .ID }}/{{ .Season }}/{{ .Episode }}",
			Params:         map[string]string{"autoplay": "1", "color": "e50914"},
			Records: []validate.Record{
				{"name": "EmbedHub", "kind": "embed", "quality": "FHD", "reliability": "Fast", "language": "en", "subtitles": "en,es,fr"},
			},
		},
		{
			ID:             "streamvault",
			Name:           "StreamVault",
			Variant:        source.VariantStream,
			MovieTemplate:  "https://streamvault.example/v2/movie/{{ .ID }}/master.m3u8",
			SeriesTemplate: "https://streamvault.example/v2/tv/{{ .ID }}/s{{ pad .Season }}e{{ pad .Episode }}/master.m3u8",
			Params:         map[string]string{"quality": "auto"},
			Records: []validate.Record{
				{"id": "4k", "name": "StreamVault UHD", "kind": "hls", "quality": "4K", "reliability": "Premium", "ad_free": true, "language": "en", "subtitles": []any{"en"}},
				{"id": "hd", "name": "StreamVault", "kind": "hls", "quality": "HD", "reliability": "Stable", "ad_free": true, "language": "en"},
			},
		},
		{
			ID:             "mirrorline",
			Name:           "MirrorLine",
			Variant:        source.VariantStream,
			MovieTemplate:  "https://mirrorline.example/watch?type=movie&id={{ .ID }}",
			SeriesTemplate: "https://mirrorline.example/watch?type=tv&id={{ .ID }}&s={{ .Season }}&e={{ .Episode }}",
			Params:         map[string]string{"theme": "dark", "autonext": "0"},
			Records: []validate.Record{
				{"name": "MirrorLine", "kind": "embed", "language": "multi"},
			},
		},
		{
			ID:            "filedepot",
			Name:          "FileDepot",
			Variant:       source.VariantDownload,
			MovieTemplate: "https://filedepot.example/dl/movie/{{ .ID }}",
			KeyParam:      "token",
			Records: []validate.Record{
				{"id": "1080p-mkv", "name": "FileDepot 1080p", "kind": "file", "quality": "1080p", "format": "mkv", "codec": "x265 10bit", "size_bytes": 4.2e9, "estimated_duration": "2h 19m", "params": map[string]any{"f": "1080p.mkv"}},
				{"id": "720p-mp4", "name": "FileDepot 720p", "kind": "file", "quality": "720p", "format": "mp4", "codec": "h264", "file_size": "1.4 GB", "estimated_duration": "2h 19m", "params": map[string]any{"f": "720p.mp4"}},
			},
		},
		{
			ID:             "swarmindex",
			Name:           "SwarmIndex",
			Variant:        source.VariantTorrent,
			MovieTemplate:  "magnet:?xt=urn:btih:{{ btih .Key }}",
			SeriesTemplate: "magnet:?xt=urn:btih:{{ btih .Key }}",
			Records: []validate.Record{
				{"id": "2160p", "name": "SwarmIndex 2160p", "kind": "file", "quality": "2160p", "seeders": 212, "leechers": 40, "trusted": true, "params": map[string]any{"dn": "2160p"}},
				{"id": "1080p", "name": "SwarmIndex 1080p", "kind": "file", "quality": "1080p", "seeders": 31, "leechers": 9, "params": map[string]any{"dn": "1080p"}},
				{"id": "720p", "name": "SwarmIndex 720p", "kind": "file", "quality": "720p", "seeders": 3, "leechers": 1},
			},
		},
	}
}
