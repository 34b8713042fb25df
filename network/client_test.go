package network

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinesrc/cinesrc/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server echoing the user agent", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Agent", r.UserAgent())
			w.WriteHeader(http.StatusNoContent)
		}))
		Reset(server.Close)

		Convey("The shared client should send the browser user agent", func() {
			resp, err := Client.Head(server.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.Header.Get("X-Agent"), ShouldEqual, constant.UserAgent)
		})

		Convey("An explicit user agent should be kept", func() {
			req, _ := http.NewRequest(http.MethodHead, server.URL, nil)
			req.Header.Set("User-Agent", "probe/1")
			resp, err := Client.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.Header.Get("X-Agent"), ShouldEqual, "probe/1")
		})

		Convey("The TLS client should fall back to plain transport for http", func() {
			resp, err := TLSClient.Head(server.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
		})
	})
}
