package source

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuality(t *testing.T) {
	Convey("Qualities are ordered", t, func() {
		So(QualitySD, ShouldBeLessThan, QualityHD)
		So(QualityHD, ShouldBeLessThan, QualityFHD)
		So(QualityFHD, ShouldBeLessThan, Quality4K)
	})

	Convey("Resolution labels are understood", t, func() {
		for label, want := range map[string]Quality{"1080p": QualityFHD, "UHD": Quality4K, "720P": QualityHD, "sd": QualitySD} {
			got, ok := ParseQuality(label)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, want)
		}

		_, ok := ParseQuality("8k")
		So(ok, ShouldBeFalse)
	})

	Convey("Qualities marshal as text", t, func() {
		b, err := json.Marshal(struct{ Q Quality }{Quality4K})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"Q":"4K"}`)

		var out struct{ Q Quality }
		So(json.Unmarshal([]byte(`{"Q":"fhd"}`), &out), ShouldBeNil)
		So(out.Q, ShouldEqual, QualityFHD)
	})
}

func TestKind(t *testing.T) {
	Convey("Kinds accept aliases", t, func() {
		k, ok := ParseKind("m3u8")
		So(ok, ShouldBeTrue)
		So(k, ShouldEqual, KindSegments)
		So(k.String(), ShouldEqual, "streaming-segment")

		So(Kind(9).Known(), ShouldBeFalse)
	})
}

func TestHealth(t *testing.T) {
	Convey("Health is derived from seeders", t, func() {
		So(HealthOf(0), ShouldEqual, HealthPoor)
		So(HealthOf(5), ShouldEqual, HealthFair)
		So(HealthOf(25), ShouldEqual, HealthGood)
		So(HealthOf(1000), ShouldEqual, HealthExcellent)
	})

	Convey("Health names parse case-insensitively", t, func() {
		h, ok := ParseHealth("excellent")
		So(ok, ShouldBeTrue)
		So(h, ShouldEqual, HealthExcellent)
	})
}

func TestFormatAndReliability(t *testing.T) {
	Convey("Formats accept a leading dot", t, func() {
		f, ok := ParseFormat(".mkv")
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, FormatMKV)
	})

	Convey("Reliability tiers parse", t, func() {
		r, ok := ParseReliability("Premium")
		So(ok, ShouldBeTrue)
		So(r, ShouldEqual, ReliabilityPremium)
	})

	Convey("Enums describe themselves as string schemas", t, func() {
		So(Quality(0).JSONSchema().Enum, ShouldHaveLength, 4)
		So(Kind(0).JSONSchema().Type, ShouldEqual, "string")
	})
}
