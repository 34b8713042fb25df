package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestKeys(t *testing.T) {
	Convey("Given a mocked keyring", t, func() {
		Convey("A missing key should not be an error", func() {
			_, ok, err := Key("filedepot")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("A stored key should be returned trimmed", func() {
			So(SetKey("filedepot", "  secret  "), ShouldBeNil)
			Reset(func() { _ = DeleteKey("filedepot") })

			apiKey, ok, err := Key("filedepot")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(apiKey, ShouldEqual, "secret")
		})

		Convey("A blank key should be refused", func() {
			So(SetKey("filedepot", " "), ShouldEqual, ErrEmptyKey)
		})

		Convey("Deleting twice should succeed", func() {
			So(DeleteKey("nothing"), ShouldBeNil)
			So(DeleteKey("nothing"), ShouldBeNil)
		})
	})
}
