package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/provider"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func providerOne() *provider.Provider {
	return &provider.Provider{
		ID:             "p1",
		Name:           "Provider One",
		MovieTemplate:  "https://one.example/movie/{{ .ID }}",
		SeriesTemplate: "https://one.example/tv/{{ .ID }}/{{ .Season }}/{{ .Episode }}",
		Records: []validate.Record{
			{"name": "One FHD", "quality": "FHD"},
			{"name": 42},
		},
	}
}

func providerTwo() *provider.Provider {
	return &provider.Provider{
		ID:            "p2",
		Name:          "Provider Two",
		MovieTemplate: "https://two.example/{{ .ID }}",
		Records: []validate.Record{
			{"id": "hd", "name": "Two HD", "quality": "HD"},
			{"id": "sd", "name": "Two SD", "params": map[string]any{"res": "480"}},
		},
	}
}

func mustRegistry(providers ...*provider.Provider) *provider.Registry {
	registry, err := provider.NewRegistry(providers...)
	So(err, ShouldBeNil)
	return registry
}

func TestBuild(t *testing.T) {
	Convey("Given two providers, one of them with a malformed record", t, func() {
		builder := NewBuilder(mustRegistry(providerOne(), providerTwo()))

		c, err := builder.Build(context.Background(), content.NewMovie(550))
		So(err, ShouldBeNil)

		Convey("Then the malformed record should be dropped", func() {
			So(c.Len(), ShouldEqual, 3)
			So(c.RejectedCount(), ShouldEqual, 1)
			So(c.Rejections().Error(), ShouldContainSubstring, "[p1]")
		})

		Convey("Then items should be grouped by provider", func() {
			groups := c.Groups()
			So(groups, ShouldHaveLength, 2)
			So(groups[0].Name, ShouldEqual, "Provider One")
			So(groups[0].IDs, ShouldResemble, []string{"p1_1"})
			So(groups[1].Name, ShouldEqual, "Provider Two")
			So(groups[1].IDs, ShouldResemble, []string{"p2_hd", "p2_sd"})
		})

		Convey("Then the partition should be complete and disjoint", func() {
			seen := map[string]int{}
			for _, g := range c.Groups() {
				for _, id := range g.IDs {
					seen[id]++
				}
			}
			So(seen, ShouldHaveLength, c.Len())
			for _, item := range c.Items() {
				So(seen[item.Base().ID], ShouldEqual, 1)
			}
		})

		Convey("Then locators should be built from the templates", func() {
			item, ok := c.Lookup("p1_1")
			So(ok, ShouldBeTrue)
			So(item.Base().Locator, ShouldEqual, "https://one.example/movie/550")
			So(item.Base().Quality, ShouldEqual, source.QualityFHD)

			item, _ = c.Lookup("p2_sd")
			So(item.Base().Locator, ShouldEqual, "https://two.example/550?res=480")
		})

		Convey("Then accessors should return copies", func() {
			groups := c.Groups()
			groups[0].IDs[0] = "tampered"
			So(c.Groups()[0].IDs[0], ShouldEqual, "p1_1")
		})
	})

	Convey("Given a series identity", t, func() {
		builder := NewBuilder(mustRegistry(providerOne(), providerTwo()))

		c, err := builder.Build(context.Background(), content.NewEpisode(1399, 1, 2))
		So(err, ShouldBeNil)

		Convey("Then movie-only providers should be skipped silently", func() {
			So(c.Len(), ShouldEqual, 1)
			So(c.Streams()[0].Locator, ShouldEqual, "https://one.example/tv/1399/1/2")
			So(c.RejectedCount(), ShouldEqual, 1)
		})
	})

	Convey("Given an invalid identity", t, func() {
		builder := NewBuilder(mustRegistry(providerOne()))

		_, err := builder.Build(context.Background(), content.Identity{Kind: content.Series, ID: 1})

		Convey("Then the build should fail", func() {
			So(errors.Is(err, content.ErrInvalidIdentity), ShouldBeTrue)
		})
	})

	Convey("Given providers that yield nothing valid", t, func() {
		empty := &provider.Provider{ID: "empty", MovieTemplate: "https://empty.example/{{ .ID }}"}
		builder := NewBuilder(mustRegistry(empty))

		c, err := builder.Build(context.Background(), content.NewMovie(1))

		Convey("Then the catalog should be empty rather than failing", func() {
			So(err, ShouldBeNil)
			So(c.Empty(), ShouldBeTrue)
			So(c.Groups(), ShouldBeEmpty)
			So(c.Rejections(), ShouldBeNil)
		})
	})

	Convey("Given a provider that fails", t, func() {
		failing := &provider.Provider{
			ID:            "flaky",
			MovieTemplate: "https://flaky.example/{{ .ID }}",
			Contribute: func(context.Context, content.Identity, string) ([]validate.Record, error) {
				return nil, errors.New("script exploded")
			},
		}
		builder := NewBuilder(mustRegistry(failing, providerTwo()))

		c, err := builder.Build(context.Background(), content.NewMovie(550))

		Convey("Then the other providers should still contribute", func() {
			So(err, ShouldBeNil)
			So(c.Len(), ShouldEqual, 2)
			So(c.Rejections().Error(), ShouldContainSubstring, "script exploded")
		})
	})

	Convey("Given records with colliding ids", t, func() {
		dup := &provider.Provider{
			ID:            "dup",
			MovieTemplate: "https://dup.example/{{ .ID }}",
			Records: []validate.Record{
				{"id": "a", "name": "First"},
				{"id": "a", "name": "Second"},
			},
		}
		c, err := NewBuilder(mustRegistry(dup)).Build(context.Background(), content.NewMovie(7))
		So(err, ShouldBeNil)

		Convey("Then the first one should win", func() {
			So(c.Len(), ShouldEqual, 1)
			item, _ := c.Lookup("dup_a")
			So(item.Base().Name, ShouldEqual, "First")
			So(c.Rejections().Error(), ShouldContainSubstring, "duplicate")
		})
	})

	Convey("Given records already carrying the group prefix", t, func() {
		stray := &provider.Provider{
			ID:            "stray",
			GroupPrefix:   "mirror_",
			MovieTemplate: "https://stray.example/{{ .ID }}",
			Records: []validate.Record{
				{"id": "mirror_1", "name": "Matched"},
			},
		}
		c, err := NewBuilder(mustRegistry(stray)).Build(context.Background(), content.NewMovie(7))
		So(err, ShouldBeNil)

		Convey("Then ids already carrying the prefix should be kept", func() {
			_, ok := c.Lookup("mirror_1")
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBuilder(mustRegistry(providerOne())).Build(ctx, content.NewMovie(1))

		Convey("Then the build should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Given items from known and unknown providers", t, func() {
		registry := mustRegistry(providerOne(), providerTwo())
		items := lo.Map([]string{"p2_a", "zz_1", "p1_a", "p2_b"}, func(id string, _ int) source.Item {
			return source.Descriptor{ID: id}
		})

		groups := partition(registry.Providers(), items)

		Convey("Then groups should follow registration order with other last", func() {
			names := lo.Map(groups, func(g Group, _ int) string { return g.Name })
			So(names, ShouldResemble, []string{"Provider One", "Provider Two", OtherGroup})
			So(groups[1].IDs, ShouldResemble, []string{"p2_a", "p2_b"})
			So(groups[2].IDs, ShouldResemble, []string{"zz_1"})
		})
	})

	Convey("Given providers sharing a group name", t, func() {
		one, two := providerOne(), providerTwo()
		one.Group, two.Group = "Mirrors", "Mirrors"
		registry := mustRegistry(one, two)
		items := []source.Item{source.Descriptor{ID: "p1_a"}, source.Descriptor{ID: "p2_a"}}

		groups := partition(registry.Providers(), items)

		Convey("Then they should share one group", func() {
			So(groups, ShouldHaveLength, 1)
			So(groups[0].Providers, ShouldResemble, []string{"p1", "p2"})
		})
	})
}

func TestCache(t *testing.T) {
	Convey("Given a builder with a cache of two", t, func() {
		cache, err := NewCache(2)
		So(err, ShouldBeNil)

		calls := 0
		counting := &provider.Provider{
			ID:            "counting",
			MovieTemplate: "https://count.example/{{ .ID }}",
			Contribute: func(context.Context, content.Identity, string) ([]validate.Record, error) {
				calls++
				return []validate.Record{{"name": "Counted"}}, nil
			},
		}
		builder := NewBuilder(mustRegistry(counting), WithCache(cache))
		ctx := context.Background()

		first, err := builder.Build(ctx, content.NewMovie(1))
		So(err, ShouldBeNil)

		Convey("A second build should be served from the cache", func() {
			second, err := builder.Build(ctx, content.NewMovie(1))
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
			So(calls, ShouldEqual, 1)
		})

		Convey("A changed registry should miss", func() {
			changed := &provider.Provider{
				ID:            "counting",
				MovieTemplate: "https://count.example/v2/{{ .ID }}",
				Contribute:    counting.Contribute,
			}
			other := NewBuilder(mustRegistry(changed), WithCache(cache))

			_, err := other.Build(ctx, content.NewMovie(1))
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
			So(cache.Len(), ShouldEqual, 2)
		})

		Convey("The least recently used catalog should be evicted", func() {
			_, _ = builder.Build(ctx, content.NewMovie(2))
			_, _ = builder.Build(ctx, content.NewMovie(1))
			_, _ = builder.Build(ctx, content.NewMovie(3))

			_, ok := cache.Get(content.NewMovie(2), builder.Registry().Hash())
			So(ok, ShouldBeFalse)
			_, ok = cache.Get(content.NewMovie(1), builder.Registry().Hash())
			So(ok, ShouldBeTrue)
		})
	})

	Convey("A cache of zero entries should be rejected", t, func() {
		_, err := NewCache(0)
		So(err, ShouldNotBeNil)
	})
}

func TestDocument(t *testing.T) {
	Convey("Given a built catalog", t, func() {
		c, err := NewBuilder(mustRegistry(providerOne(), providerTwo())).Build(context.Background(), content.NewMovie(550))
		So(err, ShouldBeNil)

		doc := c.Document()

		Convey("The document should mirror the groups", func() {
			So(doc.Groups, ShouldHaveLength, 2)
			So(doc.Groups[1].Entries[0].ID, ShouldEqual, "p2_hd")
			So(doc.Rejected, ShouldHaveLength, 1)
			So(doc.Registry, ShouldEqual, c.RegistryHash())
		})

		Convey("The schema should describe the document", func() {
			schema := Schema()
			So(schema, ShouldNotBeNil)
			_, ok := schema.Properties.Get("groups")
			So(ok, ShouldBeTrue)
		})
	})
}
