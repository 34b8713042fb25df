package ui

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}

		Convey("Content should pass through untouched while idle", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("When a notification arrives", func() {
			cmd := m.Update(Notify("copied")())
			So(cmd, ShouldNotBeNil)

			Convey("Then it should be appended to the last line", func() {
				view := m.View("a\nb")
				So(view, ShouldStartWith, "a\nb")
				So(view, ShouldContainSubstring, "copied")
			})

			Convey("Then its own clear message should remove it", func() {
				m.Update(clearMsg{generation: m.generation})
				So(m.Text(), ShouldBeEmpty)
			})

			Convey("Then a stale clear message should be ignored", func() {
				m.Update(NotifyFailure(errors.New("unreachable"))())
				m.Update(clearMsg{generation: m.generation - 1})
				So(m.Text(), ShouldEqual, "unreachable")
			})
		})
	})
}
