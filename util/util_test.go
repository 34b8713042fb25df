package util

import (
	"testing"

	"github.com/cinesrc/cinesrc/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "source", "sources"), ShouldEqual, "1 source")
		So(Quantify(2, "source", "sources"), ShouldEqual, "2 sources")
		So(Quantify(0, "source", "sources"), ShouldEqual, "0 sources")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("paused"), ShouldEqual, "Paused")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("providers/mirror.lua"), ShouldEqual, "mirror")
		So(FileStem("mirror"), ShouldEqual, "mirror")
	})
}

func TestClosest(t *testing.T) {
	Convey("Closest", t, func() {
		So(Closest("probe.atempts", []string{"probe.attempts", "logs.write", "catalog.cache_size"}), ShouldEqual, "probe.attempts")
		So(Closest("x", nil), ShouldBeEmpty)
	})
}

func TestEllipsize(t *testing.T) {
	Convey("Ellipsize", t, func() {
		So(Ellipsize("short", 10), ShouldEqual, "short")
		So(Ellipsize("a rather long name", 6), ShouldEqual, "a rat…")
		So(Ellipsize("anything", 0), ShouldBeEmpty)
	})
}

func TestMaxMinClamp(t *testing.T) {
	Convey("Max/Min/Clamp", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Clamp(120.0, 0, 100), ShouldEqual, 100.0)
		So(Clamp(-3, 0, 100), ShouldEqual, 0)
		So(Clamp(42, 0, 100), ShouldEqual, 42)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		So(filesystem.API().MkdirAll("/tmp/tree/inner", 0o755), ShouldBeNil)
		So(filesystem.API().WriteFile("/tmp/tree/inner/f", []byte("x"), 0o644), ShouldBeNil)

		So(Delete("/tmp/tree"), ShouldBeNil)
		exists, _ := filesystem.API().Exists("/tmp/tree")
		So(exists, ShouldBeFalse)
		So(Delete("/tmp/tree"), ShouldNotBeNil)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[string]
		So(s.Pop(), ShouldBeEmpty)

		s.Push("groups")
		s.Push("sources")
		So(s.Len(), ShouldEqual, 2)
		So(s.Peek(), ShouldEqual, "sources")
		So(s.Pop(), ShouldEqual, "sources")
		So(s.Pop(), ShouldEqual, "groups")

		s.Push("x")
		s.Clear()
		So(s.Len(), ShouldEqual, 0)
	})
}
