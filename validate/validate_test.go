package validate

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/cinesrc/cinesrc/source"
	. "github.com/smartystreets/goconvey/convey"
)

func streamRecord() Record {
	return Record{
		"id":        "mirror_1",
		"name":      "Mirror",
		"locator":   "https://mirror.example/embed/movie/550",
		"quality":   "1080p",
		"kind":      "hls",
		"ad_free":   true,
		"language":  "en",
		"subtitles": []any{"en", " fr ", ""},
	}
}

func TestRecord(t *testing.T) {
	Convey("Given a complete stream record", t, func() {
		raw := streamRecord()

		Convey("It should yield a typed descriptor", func() {
			item, err := One(raw, source.VariantStream)
			So(err, ShouldBeNil)

			d := item.(source.Descriptor)
			So(d.ID, ShouldEqual, "mirror_1")
			So(d.Quality, ShouldEqual, source.QualityFHD)
			So(d.Kind, ShouldEqual, source.KindSegments)
			So(d.AdFree, ShouldBeTrue)
			So(d.Subtitles(), ShouldResemble, []string{"en", "fr"})
			So(d.Validate(), ShouldBeNil)
		})

		Convey("Unknown fields should be ignored", func() {
			raw["rating"] = 9.5
			raw["nested"] = map[string]any{"x": 1}
			_, err := One(raw, source.VariantStream)
			So(err, ShouldBeNil)
		})

		Convey("A blank name should be rejected by field", func() {
			raw["name"] = "   "
			_, err := One(raw, source.VariantStream)

			var vErr *ValidationError
			So(errors.As(err, &vErr), ShouldBeTrue)
			So(vErr.Field, ShouldEqual, "name")
			So(errors.Is(err, ErrInvalid), ShouldBeTrue)
		})

		Convey("A mistyped locator should be rejected", func() {
			raw["locator"] = 42
			_, err := One(raw, source.VariantStream)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "locator")
		})

		Convey("An unknown quality should be rejected rather than guessed", func() {
			raw["quality"] = "ultra"
			_, err := One(raw, source.VariantStream)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a minimal stream record", t, func() {
		raw := Record{"id": "m_1", "name": "Minimal", "url": "https://m.example/1"}

		Convey("Defaults should never promote quality or trust", func() {
			item, err := One(raw, source.VariantStream)
			So(err, ShouldBeNil)

			d := item.Base()
			So(d.Locator, ShouldEqual, "https://m.example/1")
			So(d.Quality, ShouldEqual, source.QualitySD)
			So(d.Reliability, ShouldEqual, source.ReliabilityFast)
			So(d.AdFree, ShouldBeFalse)
			So(d.Language, ShouldEqual, DefaultLanguage)
			So(d.Subtitles(), ShouldBeEmpty)
		})
	})
}

func TestDownloadRecord(t *testing.T) {
	Convey("Given a download record", t, func() {
		raw := streamRecord()
		raw["format"] = "mkv"
		raw["codec"] = "x265"
		raw["size_bytes"] = 1500000000.0

		Convey("It should carry container details", func() {
			item, err := One(raw, source.VariantDownload)
			So(err, ShouldBeNil)

			option := item.(source.DownloadOption)
			So(option.Format, ShouldEqual, source.FormatMKV)
			So(option.CodecLabel, ShouldEqual, "x265")
			So(option.FileSizeLabel, ShouldEqual, "1.5 GB")
		})

		Convey("A NaN size should be rejected", func() {
			raw["size_bytes"] = math.NaN()
			_, err := One(raw, source.VariantDownload)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "finite")
		})
	})
}

func TestTorrentRecord(t *testing.T) {
	Convey("Given a torrent record", t, func() {
		raw := Record{
			"id":       "idx_1",
			"name":     "Release",
			"magnet":   "magnet:?xt=urn:btih:0123456789abcdef",
			"seeders":  json.Number("140"),
			"leechers": 12,
			"quality":  "2160p",
		}

		Convey("It should derive health and use the magnet as locator", func() {
			item, err := One(raw, source.VariantTorrent)
			So(err, ShouldBeNil)

			torrent := item.(source.TorrentSource)
			So(torrent.Health, ShouldEqual, source.HealthExcellent)
			So(torrent.Locator, ShouldEqual, torrent.Magnet)
			So(torrent.File.IsAbsent(), ShouldBeTrue)
			So(torrent.Trusted, ShouldBeFalse)
		})

		Convey("A declared file locator should be preferred", func() {
			raw["file"] = "https://cdn.example/release.mkv"
			item, err := One(raw, source.VariantTorrent)
			So(err, ShouldBeNil)
			So(item.Base().Locator, ShouldEqual, "https://cdn.example/release.mkv")
			So(item.(source.TorrentSource).File.MustGet(), ShouldEqual, "https://cdn.example/release.mkv")
		})

		Convey("A missing magnet should reject the record", func() {
			delete(raw, "magnet")
			_, err := One(raw, source.VariantTorrent)

			var vErr *ValidationError
			So(errors.As(err, &vErr), ShouldBeTrue)
			So(vErr.Field, ShouldEqual, "magnet")
		})

		Convey("Non-numeric seeders should reject the record", func() {
			raw["seeders"] = "lots"
			_, err := One(raw, source.VariantTorrent)
			So(err, ShouldNotBeNil)
		})

		Convey("Infinite leechers should reject the record", func() {
			raw["leechers"] = math.Inf(1)
			_, err := One(raw, source.VariantTorrent)
			So(err, ShouldNotBeNil)
		})

		Convey("Fractional seeders should reject the record", func() {
			raw["seeders"] = 2.5
			_, err := One(raw, source.VariantTorrent)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBatch(t *testing.T) {
	Convey("Given N records of which K are malformed", t, func() {
		records := []Record{
			streamRecord(),
			{"id": "bad_1", "name": "No locator"},
			{"id": "ok_2", "name": "Two", "locator": "https://two.example"},
			{"id": 7, "name": "Mistyped id", "locator": "https://x.example"},
			nil,
			{"id": "ok_3", "name": "Three", "locator": "https://three.example", "quality": "hd"},
		}

		valid, rejected := Batch(records, source.VariantStream)

		Convey("Exactly N-K items should survive, in order", func() {
			So(valid, ShouldHaveLength, 3)
			So(valid[0].Base().ID, ShouldEqual, "mirror_1")
			So(valid[1].Base().ID, ShouldEqual, "ok_2")
			So(valid[2].Base().ID, ShouldEqual, "ok_3")
		})

		Convey("Exactly K rejections should be reported", func() {
			So(rejected, ShouldHaveLength, 3)
			for _, err := range rejected {
				So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			}
		})
	})
}
