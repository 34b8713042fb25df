package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/provider"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/validate"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func retrievals(m *lifecycle.Manager) *lifecycle.Retrievals {
	p := &provider.Provider{
		ID:            "p2",
		MovieTemplate: "https://two.example/{{ .ID }}",
		Records: []validate.Record{
			{"name": "Two SD", "quality": "SD"},
			{"name": "Two FHD", "quality": "FHD"},
			{"name": "Two HD", "quality": "HD", "ad_free": true},
		},
	}
	registry := lo.Must(provider.NewRegistry(p))
	c := lo.Must(catalog.NewBuilder(registry).Build(context.Background(), content.NewMovie(550)))
	return lifecycle.NewRetrievals(m, c)
}

func ids(items []source.Item) []string {
	return lo.Map(items, func(item source.Item, _ int) string { return item.Base().ID })
}

func TestParsePicker(t *testing.T) {
	Convey("Given the catalog items", t, func() {
		m := lifecycle.NewManager(lifecycle.WithInterval(0))
		Reset(m.Close)
		items := retrievals(m).Catalog().Items()

		pick := func(kind, value string) []string {
			p, err := ParsePicker(kind, value)
			So(err, ShouldBeNil)
			return ids(p(items))
		}

		Convey("Positional pickers should select one item", func() {
			So(pick("first", ""), ShouldResemble, []string{"p2_1"})
			So(pick("last", ""), ShouldResemble, []string{"p2_3"})
			So(pick("index", "1"), ShouldResemble, []string{"p2_2"})
			So(pick("index", "99"), ShouldResemble, []string{"p2_3"})
		})

		Convey("best should prefer the highest quality", func() {
			So(pick("best", ""), ShouldResemble, []string{"p2_2"})
		})

		Convey("quality should keep tiers at or above the minimum", func() {
			So(pick("quality", "720p"), ShouldResemble, []string{"p2_2", "p2_3"})
		})

		Convey("exact should match the source id", func() {
			So(pick("exact", "p2_3"), ShouldResemble, []string{"p2_3"})
			So(pick("exact", "p9_1"), ShouldBeEmpty)
		})

		Convey("Positional pickers should cope with no items", func() {
			p, _ := ParsePicker("first", "")
			So(p(nil), ShouldBeEmpty)
			p, _ = ParsePicker("best", "")
			So(p(nil), ShouldBeEmpty)
		})

		Convey("Bad pickers should be rejected", func() {
			_, err := ParsePicker("random", "")
			So(err, ShouldNotBeNil)
			_, err = ParsePicker("index", "x")
			So(err, ShouldNotBeNil)
			_, err = ParsePicker("quality", "8k")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a manager that completes in a few ticks", t, func() {
		m := lifecycle.NewManager(lifecycle.WithInterval(time.Millisecond), lifecycle.WithIncrementFunc(func() int { return 40 }))
		Reset(m.Close)
		r := retrievals(m)

		Convey("Waiting with JSON output should report completed retrievals", func() {
			var out bytes.Buffer
			picker, _ := ParsePicker("quality", "HD")
			err := Run(context.Background(), &Options{
				Out:        &out,
				Retrievals: r,
				Picker:     mo.Some(picker),
				Json:       true,
				Wait:       true,
			})
			So(err, ShouldBeNil)

			var output Output
			So(json.Unmarshal(out.Bytes(), &output), ShouldBeNil)
			So(output.Content, ShouldEqual, "movie/550")
			So(output.Result, ShouldHaveLength, 2)
			for _, result := range output.Result {
				So(result.Retrieval.Status, ShouldEqual, lifecycle.Completed)
				So(result.Retrieval.Progress, ShouldEqual, 100)
			}
		})

		Convey("Plain output without waiting should print one line per source", func() {
			var out bytes.Buffer
			picker, _ := ParsePicker("first", "")
			err := Run(context.Background(), &Options{Out: &out, Retrievals: r, Picker: mo.Some(picker)})
			So(err, ShouldBeNil)
			So(out.String(), ShouldStartWith, "p2_1\tdownloading")
		})

		Convey("A cancelled wait should return the context error", func() {
			slow := lifecycle.NewManager(lifecycle.WithInterval(time.Hour))
			Reset(slow.Close)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := Run(ctx, &Options{Out: &bytes.Buffer{}, Retrievals: retrievals(slow), Wait: true})
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("An empty selection should be an error in plain mode", func() {
			picker, _ := ParsePicker("exact", "nope")
			err := Run(context.Background(), &Options{Out: &bytes.Buffer{}, Retrievals: r, Picker: mo.Some(picker)})
			So(errors.Is(err, ErrNothingPicked), ShouldBeTrue)
		})

		Convey("An empty selection should be an empty result in JSON mode", func() {
			var out bytes.Buffer
			picker, _ := ParsePicker("exact", "nope")
			So(Run(context.Background(), &Options{Out: &out, Retrievals: r, Picker: mo.Some(picker), Json: true}), ShouldBeNil)
			So(out.String(), ShouldEqual, `{"content":"movie/550","result":[]}`)
		})
	})
}
