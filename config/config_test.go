package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("display.pause_ms"), ShouldEqual, "display_pause_ms")
		})

		Convey("Env should carry the application prefix", func() {
			f := Default[key.DisplayPauseMs]
			So(f.Env(), ShouldEqual, "TVLOOP_DISPLAY_PAUSE_MS")
		})
	})
}

func TestHistoryCapacity(t *testing.T) {
	Convey("HistoryCapacity", t, func() {
		_ = Setup()
		defer viper.Set(key.HistoryLowMemory, false)
		defer viper.Set(key.HistoryCapacity, MaxHistoryCapacity)

		Convey("Defaults to the maximum", func() {
			So(HistoryCapacity(), ShouldEqual, MaxHistoryCapacity)
		})

		Convey("Is clamped into range", func() {
			viper.Set(key.HistoryCapacity, 10)
			So(HistoryCapacity(), ShouldEqual, MinHistoryCapacity)
			viper.Set(key.HistoryCapacity, 1000)
			So(HistoryCapacity(), ShouldEqual, MaxHistoryCapacity)
		})

		Convey("Low memory forces the minimum", func() {
			viper.Set(key.HistoryLowMemory, true)
			So(HistoryCapacity(), ShouldEqual, MinHistoryCapacity)
		})
	})
}

func TestMillis(t *testing.T) {
	Convey("Millis never returns a negative duration", t, func() {
		viper.Set("test.negative", -5)
		So(Millis("test.negative"), ShouldEqual, 0)
		viper.Set("test.positive", 250)
		So(Millis("test.positive").Milliseconds(), ShouldEqual, 250)
	})
}
