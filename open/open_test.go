package open

import (
	"errors"
	"testing"

	"github.com/cinesrc/cinesrc/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCheck(t *testing.T) {
	Convey("Given locators", t, func() {
		Convey("Web and magnet links should be accepted", func() {
			So(Check("https://one.example/movie/550"), ShouldBeNil)
			So(Check("magnet:?xt=urn:btih:abc"), ShouldBeNil)
		})

		Convey("Other schemes should be rejected", func() {
			err := Check("file:///etc/passwd")
			So(errors.Is(err, ErrUnsupportedScheme), ShouldBeTrue)
		})
	})
}

func TestLauncher(t *testing.T) {
	Convey("Given a platform", t, func() {
		Convey("Linux should use xdg-open", func() {
			name, args, ok := launcher(constant.Linux, "https://x.example")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "xdg-open")
			So(args, ShouldResemble, []string{"https://x.example"})
		})

		Convey("Windows should escape magnet links for cmd", func() {
			name, args, ok := launcher(constant.Windows, "magnet:?xt=urn:btih:abc&dn=x")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "cmd")
			So(args[len(args)-1], ShouldEqual, "magnet:?xt=urn:btih:abc^&dn=x")
		})

		Convey("Unknown platforms should be refused", func() {
			_, _, ok := launcher("plan9", "https://x.example")
			So(ok, ShouldBeFalse)
		})
	})
}
