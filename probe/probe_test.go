package probe

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinesrc/cinesrc/config"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func failing(calls *int32) Checker {
	return CheckerFunc(func(context.Context, string) error {
		atomic.AddInt32(calls, 1)
		return errors.New("connection refused")
	})
}

func TestBackoff(t *testing.T) {
	Convey("Given a locator that never answers", t, func() {
		var calls int32
		var delays []time.Duration

		p := New(failing(&calls))
		p.sleep = func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}

		reachable := p.Probe(context.Background(), "https://down.example")

		Convey("Then it should be attempted three times, waiting 200ms then 400ms", func() {
			So(reachable, ShouldBeFalse)
			So(atomic.LoadInt32(&calls), ShouldEqual, 3)
			So(delays, ShouldResemble, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond})
		})

		Convey("Then Check should describe the failure", func() {
			err := p.Check(context.Background(), "https://down.example")
			var reach *ReachabilityError
			So(errors.As(err, &reach), ShouldBeTrue)
			So(reach.Attempts, ShouldEqual, 3)
			So(err.Error(), ShouldContainSubstring, "3 attempts")
		})
	})

	Convey("Given a short real backoff", t, func() {
		var calls int32
		p := New(failing(&calls), WithBaseDelay(20*time.Millisecond))

		start := time.Now()
		reachable := p.Probe(context.Background(), "https://down.example")
		elapsed := time.Since(start)

		Convey("Then the whole probe should wait the two delays and no more", func() {
			So(reachable, ShouldBeFalse)
			So(elapsed, ShouldBeGreaterThanOrEqualTo, 60*time.Millisecond)
			So(elapsed, ShouldBeLessThan, 2*time.Second)
		})
	})

	Convey("Given a locator that answers on the second attempt", t, func() {
		var calls int32
		p := New(CheckerFunc(func(context.Context, string) error {
			if atomic.AddInt32(&calls, 1) < 2 {
				return errors.New("timeout")
			}
			return nil
		}))
		var delays []time.Duration
		p.sleep = func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}

		Convey("Then it should return as soon as it succeeds", func() {
			So(p.Probe(context.Background(), "https://flaky.example"), ShouldBeTrue)
			So(atomic.LoadInt32(&calls), ShouldEqual, 2)
			So(delays, ShouldHaveLength, 1)
		})
	})

	Convey("Given a checker that panics", t, func() {
		p := New(CheckerFunc(func(context.Context, string) error { panic("boom") }), WithAttempts(1))

		Convey("Then the probe should report unreachable", func() {
			So(p.Probe(context.Background(), "https://panic.example"), ShouldBeFalse)
		})
	})
}

func TestCancellation(t *testing.T) {
	Convey("Given a probe waiting a long backoff", t, func() {
		var calls int32
		p := New(failing(&calls), WithBaseDelay(10*time.Second))
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		err := p.Check(ctx, "https://down.example")

		Convey("Then cancelling should end it early", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			So(atomic.LoadInt32(&calls), ShouldEqual, 1)
		})
	})

	Convey("Given an already cancelled context", t, func() {
		var calls int32
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then no attempt should be made", func() {
			So(New(failing(&calls)).Probe(ctx, "https://down.example"), ShouldBeFalse)
			So(atomic.LoadInt32(&calls), ShouldEqual, 0)
		})
	})
}

func TestFailOpen(t *testing.T) {
	Convey("Given a scheme router without an ftp route", t, func() {
		var calls int32
		router := SchemeChecker{"https": failing(&calls)}

		Convey("A fail-open prober should assume reachable", func() {
			So(New(router).Probe(context.Background(), "ftp://files.example/a"), ShouldBeTrue)
		})

		Convey("A fail-closed prober should assume unreachable", func() {
			So(New(router, WithFailOpen(false)).Probe(context.Background(), "ftp://files.example/a"), ShouldBeFalse)
		})

		Convey("Unrouted locators should never be retried", func() {
			_ = New(router).Probe(context.Background(), "ftp://files.example/a")
			So(atomic.LoadInt32(&calls), ShouldEqual, 0)
		})
	})

	Convey("Given a prober without a checker", t, func() {
		p := &Prober{FailOpen: true}

		Convey("Then the fail-open policy should decide", func() {
			So(p.Probe(context.Background(), "https://any.example"), ShouldBeTrue)
			p.FailOpen = false
			So(p.Probe(context.Background(), "https://any.example"), ShouldBeFalse)
		})
	})
}

func TestHTTPChecker(t *testing.T) {
	Convey("Given a server answering HEAD", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/ok":
				w.WriteHeader(http.StatusOK)
			case "/moved":
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		Reset(server.Close)

		checker := HTTPChecker{Client: server.Client(), Timeout: time.Second}

		Convey("A 2xx status should be reachable", func() {
			So(checker.Check(context.Background(), server.URL+"/ok"), ShouldBeNil)
			So(checker.Check(context.Background(), server.URL+"/moved"), ShouldBeNil)
		})

		Convey("A 404 should be a status error", func() {
			err := checker.Check(context.Background(), server.URL+"/missing")
			var status *StatusError
			So(errors.As(err, &status), ShouldBeTrue)
			So(status.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a server refusing HEAD", t, func() {
		var ranged atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			ranged.Store(r.Header.Get("Range") == "bytes=0-0")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte("x"))
		}))
		Reset(server.Close)

		Convey("Then a ranged GET should be used instead", func() {
			So(HTTPChecker{Client: server.Client()}.Check(context.Background(), server.URL), ShouldBeNil)
			So(ranged.Load(), ShouldBeTrue)
		})
	})
}

func TestMagnetChecker(t *testing.T) {
	Convey("Given magnet links", t, func() {
		check := MagnetChecker{}
		ctx := context.Background()

		Convey("A hex info hash should pass", func() {
			So(check.Check(ctx, "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a&dn=movie"), ShouldBeNil)
		})

		Convey("A base32 info hash should pass", func() {
			So(check.Check(ctx, "magnet:?xt=urn:btih:YEX6BQDLUISUVHOJ6UM3GNNKPQJWPKEK"), ShouldBeNil)
		})

		Convey("A link without btih should fail", func() {
			So(check.Check(ctx, "magnet:?dn=movie"), ShouldNotBeNil)
			So(check.Check(ctx, "magnet:?xt=urn:sha1:abc"), ShouldNotBeNil)
		})

		Convey("A web locator should fail", func() {
			So(check.Check(ctx, "https://example.com"), ShouldNotBeNil)
		})
	})
}

func TestProbeAll(t *testing.T) {
	Convey("Given reachable and unreachable locators", t, func() {
		var inFlight, peak int32
		checker := CheckerFunc(func(_ context.Context, locator string) error {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			if locator == "https://down.example" {
				return errors.New("down")
			}
			return nil
		})
		p := New(checker, WithAttempts(1), WithConcurrency(2))

		results := p.ProbeAll(context.Background(), []string{
			"https://a.example", "https://b.example", "https://down.example", "https://c.example",
		})

		Convey("Then each locator should be answered independently", func() {
			So(results, ShouldHaveLength, 4)
			So(results["https://a.example"], ShouldBeTrue)
			So(results["https://down.example"], ShouldBeFalse)
		})

		Convey("Then the concurrency limit should hold", func() {
			So(atomic.LoadInt32(&peak), ShouldBeLessThanOrEqualTo, 2)
		})
	})
}

func TestNewFromConfig(t *testing.T) {
	Convey("Given the configuration", t, func() {
		So(config.Setup(), ShouldBeNil)
		viper.Set(key.ProbeAttempts, 5)
		viper.Set(key.ProbeFailOpen, false)
		Reset(func() {
			viper.Set(key.ProbeAttempts, config.Default[key.ProbeAttempts].Value)
			viper.Set(key.ProbeFailOpen, config.Default[key.ProbeFailOpen].Value)
		})

		p := NewFromConfig()

		Convey("Then the prober should follow it", func() {
			So(p.Attempts, ShouldEqual, 5)
			So(p.FailOpen, ShouldBeFalse)
			So(p.BaseDelay, ShouldEqual, 200*time.Millisecond)
			So(p.Probe(context.Background(), "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a"), ShouldBeTrue)
		})
	})
}

func TestProbeLogging(t *testing.T) {
	Convey("Given logging at warn level", t, func() {
		viper.Set(key.LogsLevel, "warn")
		var out bytes.Buffer
		So(log.SetupWriter(&out), ShouldBeNil)
		Reset(func() {
			viper.Set(key.LogsLevel, "info")
			_ = log.Setup()
		})

		var calls int32
		p := New(failing(&calls))
		p.sleep = func(context.Context, time.Duration) error { return nil }

		Convey("When every attempt fails", func() {
			So(p.Probe(context.Background(), "https://down.example"), ShouldBeFalse)

			Convey("Then the final error should be logged", func() {
				So(out.String(), ShouldContainSubstring, "level=warning")
				So(out.String(), ShouldContainSubstring, "unreachable after 3 attempts")
			})
		})

		Convey("When the probe is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(p.Probe(ctx, "https://down.example"), ShouldBeFalse)

			Convey("Then nothing should reach the warn level", func() {
				So(out.String(), ShouldBeEmpty)
			})
		})

		Convey("When an unrouted locator fails open", func() {
			p.Checker = SchemeChecker{}
			p.FailOpen = true
			So(p.Probe(context.Background(), "ftp://mirror.example"), ShouldBeTrue)
			So(out.String(), ShouldBeEmpty)
		})
	})
}
