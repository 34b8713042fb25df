package content

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIdentity(t *testing.T) {
	Convey("Given a movie identity", t, func() {
		movie := NewMovie(550)

		Convey("It should be valid", func() {
			So(movie.Validate(), ShouldBeNil)
		})

		Convey("Its key should ignore season and episode", func() {
			movie.Season, movie.Episode = 3, 4
			So(movie.Key(), ShouldEqual, "movie/550")
		})
	})

	Convey("Given a series identity", t, func() {
		episode := NewEpisode(1399, 1, 2)

		Convey("Its key should carry season and episode", func() {
			So(episode.Key(), ShouldEqual, "series/1399/s1e2")
			So(episode.String(), ShouldEqual, "series 1399 S01E02")
		})

		Convey("It should be invalid without an episode", func() {
			episode.Episode = 0
			err := episode.Validate()
			So(errors.Is(err, ErrInvalidIdentity), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "episode")
		})
	})

	Convey("Given malformed identities", t, func() {
		So(Identity{Kind: "book", ID: 1}.Validate(), ShouldNotBeNil)
		So(NewMovie(0).Validate(), ShouldNotBeNil)
		So(NewEpisode(10, 0, 1).Validate(), ShouldNotBeNil)
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("It accepts aliases", func() {
			identity, err := Parse("tv", "1399", 1, 2)
			So(err, ShouldBeNil)
			So(identity, ShouldResemble, NewEpisode(1399, 1, 2))
		})

		Convey("It drops season and episode of movies", func() {
			identity, err := Parse("movie", " 550 ", 4, 5)
			So(err, ShouldBeNil)
			So(identity, ShouldResemble, NewMovie(550))
		})

		Convey("It rejects non-numeric ids", func() {
			_, err := Parse("movie", "fight-club", 0, 0)
			So(errors.Is(err, ErrInvalidIdentity), ShouldBeTrue)
		})

		Convey("It rejects unknown kinds", func() {
			_, err := Parse("book", "1", 0, 0)
			So(err, ShouldNotBeNil)
		})
	})
}
