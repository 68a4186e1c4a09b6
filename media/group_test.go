package media

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGroups(t *testing.T) {
	Convey("Given a groups arena", t, func() {
		var groups Groups
		a, b, c := New("a", ""), New("b", ""), New("c", "")
		id := groups.Add("suggestions", a, b, c)

		Convey("Entries point at their group", func() {
			So(a.Group, ShouldEqual, id)
			group, ok := groups.Lookup(b)
			So(ok, ShouldBeTrue)
			So(group.Title, ShouldEqual, "suggestions")
		})

		Convey("After walks the group", func() {
			next, ok := groups.After(a)
			So(ok, ShouldBeTrue)
			So(next, ShouldEqual, b)
			_, ok = groups.After(c)
			So(ok, ShouldBeFalse)
		})

		Convey("Removed groups are unreachable", func() {
			groups.Remove(id)
			_, ok := groups.Lookup(a)
			So(ok, ShouldBeFalse)
			So(groups.Len(), ShouldEqual, 0)

			other := groups.Add("other")
			So(other, ShouldNotEqual, id)
			_, ok = groups.Lookup(a)
			So(ok, ShouldBeFalse)
		})

		Convey("Unknown ids resolve to nothing", func() {
			_, ok := groups.Get(NoGroup)
			So(ok, ShouldBeFalse)
			_, ok = groups.Lookup(New("x", ""))
			So(ok, ShouldBeFalse)
		})
	})
}
