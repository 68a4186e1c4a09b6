package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBar(t *testing.T) {
	Convey("Bar", t, func() {
		Convey("Keeps the label and the track width", func() {
			out := Bar(50, 10)("half")
			So(out, ShouldEndWith, " half")
			So(lipgloss.Width(out), ShouldEqual, 10+len(" half"))
		})

		Convey("Unknown progress renders an empty track", func() {
			out := Bar(-1, 4)("")
			So(lipgloss.Width(out), ShouldEqual, 5)
		})
	})
}
