package provider

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cinesrc/cinesrc/auth"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
	"github.com/cinesrc/cinesrc/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

func mirror() *Provider {
	return &Provider{
		ID:             "p1",
		Name:           "Mirror One",
		MovieTemplate:  "https://one.example/movie/{{ .ID }}",
		SeriesTemplate: "https://one.example/tv/{{ .ID }}/{{ .Season }}/{{ .Episode }}",
		Params:         map[string]string{"theme": "dark", "autoplay": "1"},
		Records:        []validate.Record{{"name": "One"}},
	}
}

func TestBuildLocator(t *testing.T) {
	Convey("Given a compiled provider", t, func() {
		registry, err := NewRegistry(mirror())
		So(err, ShouldBeNil)
		p := registry.Providers()[0]

		Convey("Movie locators should carry sorted params", func() {
			locator, err := BuildLocator(p, content.NewMovie(550))
			So(err, ShouldBeNil)
			So(locator, ShouldEqual, "https://one.example/movie/550?autoplay=1&theme=dark")
		})

		Convey("Series locators should carry season and episode", func() {
			locator, err := BuildLocator(p, content.NewEpisode(1399, 2, 5))
			So(err, ShouldBeNil)
			So(locator, ShouldEqual, "https://one.example/tv/1399/2/5?autoplay=1&theme=dark")
		})

		Convey("Building twice should be deterministic", func() {
			a, _ := BuildLocator(p, content.NewEpisode(1, 1, 1))
			b, _ := BuildLocator(p, content.NewEpisode(1, 1, 1))
			So(a, ShouldEqual, b)
		})

		Convey("An invalid identity should be refused", func() {
			_, err := BuildLocator(p, content.NewMovie(-1))
			So(errors.Is(err, content.ErrInvalidIdentity), ShouldBeTrue)
		})
	})

	Convey("Given a movie-only provider", t, func() {
		p := mirror()
		p.SeriesTemplate = ""
		_, err := NewRegistry(p)
		So(err, ShouldBeNil)

		Convey("Series should be unsupported", func() {
			So(p.Supports(content.Series), ShouldBeFalse)
			_, err := BuildLocator(p, content.NewEpisode(1, 1, 1))
			So(errors.Is(err, ErrUnsupportedKind), ShouldBeTrue)
		})
	})

	Convey("Given a magnet template", t, func() {
		p := &Provider{ID: "idx", Variant: source.VariantTorrent, MovieTemplate: "magnet:?xt=urn:btih:{{ btih .Key }}"}
		_, err := NewRegistry(p)
		So(err, ShouldBeNil)

		Convey("The hash should be stable and hex encoded", func() {
			locator, err := BuildLocator(p, content.NewMovie(550))
			So(err, ShouldBeNil)
			So(locator, ShouldStartWith, "magnet:?xt=urn:btih:")
			So(len(locator), ShouldEqual, len("magnet:?xt=urn:btih:")+40)
		})
	})
}

func TestWithParams(t *testing.T) {
	Convey("WithParams", t, func() {
		Convey("It should override existing values and sort keys", func() {
			locator, err := WithParams("https://x.example/w?type=movie&id=1", map[string]string{"id": "2", "a": "z"})
			So(err, ShouldBeNil)
			So(locator, ShouldEqual, "https://x.example/w?a=z&id=2&type=movie")
		})

		Convey("It should refuse relative locators", func() {
			_, err := WithParams("/relative", nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		registry, err := NewRegistry(mirror(), &Provider{ID: "p2", MovieTemplate: "https://two.example/{{ .ID }}"})
		So(err, ShouldBeNil)

		Convey("Defaults should be filled", func() {
			p, err := registry.Get("p2")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "p2")
			So(p.Group, ShouldEqual, "p2")
			So(p.GroupPrefix, ShouldEqual, "p2_")
			So(p.Variant, ShouldEqual, source.VariantStream)
			So(p.Matches("p2_1"), ShouldBeTrue)
			So(p.Matches("p21_1"), ShouldBeFalse)
		})

		Convey("Unknown ids should suggest the closest one", func() {
			_, err := registry.Get("p3")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "did you mean")
		})

		Convey("The hash should be stable", func() {
			again, err := NewRegistry(mirror(), &Provider{ID: "p2", MovieTemplate: "https://two.example/{{ .ID }}"})
			So(err, ShouldBeNil)
			So(again.Hash(), ShouldEqual, registry.Hash())
		})

		Convey("The hash should change with any provider detail", func() {
			changed := mirror()
			changed.Params["theme"] = "light"
			other, err := NewRegistry(changed, &Provider{ID: "p2", MovieTemplate: "https://two.example/{{ .ID }}"})
			So(err, ShouldBeNil)
			So(other.Hash(), ShouldNotEqual, registry.Hash())
		})

		Convey("Without should drop providers", func() {
			smaller, err := registry.Without("p1", "unknown")
			So(err, ShouldBeNil)
			So(smaller.IDs(), ShouldResemble, []string{"p2"})
			So(smaller.Hash(), ShouldNotEqual, registry.Hash())
		})
	})

	Convey("Given invalid declarations", t, func() {
		Convey("Duplicate ids should be refused", func() {
			_, err := NewRegistry(mirror(), mirror())
			So(errors.Is(err, ErrInvalidProvider), ShouldBeTrue)
		})

		Convey("Malformed ids should be refused", func() {
			_, err := NewRegistry(&Provider{ID: "Bad ID", MovieTemplate: "https://x"})
			So(err, ShouldNotBeNil)
		})

		Convey("Providers without templates should be refused", func() {
			_, err := NewRegistry(&Provider{ID: "none"})
			So(err, ShouldNotBeNil)
		})

		Convey("Broken templates should be refused", func() {
			_, err := NewRegistry(&Provider{ID: "broken", MovieTemplate: "https://x/{{ .ID "})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRawRecords(t *testing.T) {
	Convey("Static records should be copied", t, func() {
		p := mirror()
		records, err := p.RawRecords(context.Background(), content.NewMovie(1), "https://x")
		So(err, ShouldBeNil)
		records[0]["name"] = "changed"
		So(p.Records[0]["name"], ShouldEqual, "One")
	})
}

func TestBuiltins(t *testing.T) {
	Convey("Built-in providers should compile", t, func() {
		registry, err := NewRegistry(Builtins()...)
		So(err, ShouldBeNil)
		So(registry.Len(), ShouldEqual, len(Builtins()))

		for _, p := range registry.Providers() {
			locator, err := BuildLocator(p, content.NewMovie(550))
			So(err, ShouldBeNil)
			So(locator, ShouldNotBeEmpty)
		}
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a custom script and a disabled built-in", t, func() {
		script := `
Provider = { id = "homebrew", movie = "https://home.example/{{ .ID }}" }
function Records(content, locator) return { { name = "Home" } } end
`
		So(filesystem.API().WriteFile(filepath.Join(where.Providers(), "homebrew.lua"), []byte(script), 0o644), ShouldBeNil)
		So(filesystem.API().WriteFile(filepath.Join(where.Providers(), "broken.lua"), []byte("this is not lua"), 0o644), ShouldBeNil)
		So(auth.SetKey("filedepot", "s3cr3t"), ShouldBeNil)

		viper.Set(key.ProvidersCustom, true)
		viper.Set(key.ProvidersDisabled, []string{"mirrorline"})
		Reset(func() {
			viper.Set(key.ProvidersCustom, false)
			viper.Set(key.ProvidersDisabled, []string{})
			_ = filesystem.API().RemoveAll(where.Providers())
			_ = auth.DeleteKey("filedepot")
		})

		registry, err := Load()

		Convey("The broken script should be reported without failing the load", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "broken.lua")
			So(registry, ShouldNotBeNil)
		})

		Convey("Enabled built-ins and valid scripts should be registered in order", func() {
			ids := registry.IDs()
			So(ids, ShouldNotContain, "mirrorline")
			So(ids[len(ids)-1], ShouldEqual, "homebrew")

			home, _ := registry.Get("homebrew")
			So(home.IsCustom(), ShouldBeTrue)
			So(home.Digest, ShouldNotBeEmpty)
		})

		Convey("The stored API key should be injected as a param", func() {
			depot, err := registry.Get("filedepot")
			So(err, ShouldBeNil)
			locator, err := BuildLocator(depot, content.NewMovie(550))
			So(err, ShouldBeNil)
			So(locator, ShouldEqual, "https://filedepot.example/dl/movie/550?token=s3cr3t")
		})
	})
}

func TestCachedRecords(t *testing.T) {
	Convey("Given a counting contributor", t, func() {
		filesystem.SetMemMapFs()

		calls := 0
		contribute := func(context.Context, content.Identity, string) ([]validate.Record, error) {
			calls++
			return []validate.Record{{"name": "Scripted", "rating": 7.5}}, nil
		}
		identity := content.NewMovie(550)

		Convey("When the cache is enabled", func() {
			viper.Set(key.ProvidersCacheTTL, 5)
			Reset(func() { viper.Set(key.ProvidersCacheTTL, 60) })

			c := cached("digest-a", contribute)
			first, err := c(context.Background(), identity, "https://x.example/550")
			So(err, ShouldBeNil)
			second, err := c(context.Background(), identity, "https://x.example/550")
			So(err, ShouldBeNil)

			Convey("Then the script should run once", func() {
				So(calls, ShouldEqual, 1)
				So(second, ShouldHaveLength, 1)
				So(second[0]["name"], ShouldEqual, first[0]["name"])
			})

			Convey("Then another digest should miss", func() {
				_, err := cached("digest-b", contribute)(context.Background(), identity, "https://x.example/550")
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When the ttl is zero", func() {
			viper.Set(key.ProvidersCacheTTL, 0)
			Reset(func() { viper.Set(key.ProvidersCacheTTL, 60) })

			c := cached("digest-c", contribute)
			_, _ = c(context.Background(), identity, "l")
			_, _ = c(context.Background(), identity, "l")

			Convey("Then every call should reach the script", func() {
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When the script fails", func() {
			viper.Set(key.ProvidersCacheTTL, 5)
			Reset(func() { viper.Set(key.ProvidersCacheTTL, 60) })

			failing := func(context.Context, content.Identity, string) ([]validate.Record, error) {
				calls++
				return nil, errors.New("boom")
			}
			c := cached("digest-d", failing)
			_, err1 := c(context.Background(), identity, "l")
			_, err2 := c(context.Background(), identity, "l")

			Convey("Then the failure should not be cached", func() {
				So(err1, ShouldNotBeNil)
				So(err2, ShouldNotBeNil)
				So(calls, ShouldEqual, 2)
			})
		})
	})
}
