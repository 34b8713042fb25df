package filesystem

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestListExt(t *testing.T) {
	Convey("Given a directory with mixed files", t, func() {
		SetMemMapFs()
		dir := filepath.Join("/", "providers")
		So(API().MkdirAll(filepath.Join(dir, "nested.lua"), 0o755), ShouldBeNil)
		So(API().WriteFile(filepath.Join(dir, "b.lua"), []byte("--"), 0o644), ShouldBeNil)
		So(API().WriteFile(filepath.Join(dir, "a.lua"), []byte("--"), 0o644), ShouldBeNil)
		So(API().WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644), ShouldBeNil)

		Convey("Only regular files with the extension are listed, sorted", func() {
			paths, err := ListExt(dir, ".lua")
			So(err, ShouldBeNil)
			So(paths, ShouldResemble, []string{filepath.Join(dir, "a.lua"), filepath.Join(dir, "b.lua")})
		})

		Convey("A missing directory lists nothing", func() {
			paths, err := ListExt("/missing", ".lua")
			So(err, ShouldBeNil)
			So(paths, ShouldBeEmpty)
		})
	})
}
