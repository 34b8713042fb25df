package config

import (
	"testing"
	"time"

	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
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
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should expose the prober defaults", func() {
			So(Setup(), ShouldBeNil)
			So(viper.GetInt(key.ProbeAttempts), ShouldEqual, 3)
			So(Millis(key.ProbeBaseDelay), ShouldEqual, 200*time.Millisecond)
			So(viper.GetBool(key.ProbeFailOpen), ShouldBeTrue)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("probe.base_delay_ms"), ShouldEqual, "probe_base_delay_ms")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("When increments are inverted", func() {
			viper.Set(key.LifecycleIncrementMin, 9)
			viper.Set(key.LifecycleIncrementMax, 3)
			Reset(func() {
				viper.Set(key.LifecycleIncrementMin, Default[key.LifecycleIncrementMin].Value)
				viper.Set(key.LifecycleIncrementMax, Default[key.LifecycleIncrementMax].Value)
			})

			Convey("Then validation should fail", func() {
				So(Validate(), ShouldNotBeNil)
			})
		})

		Convey("When the prober has no attempts", func() {
			viper.Set(key.ProbeAttempts, 0)
			Reset(func() {
				viper.Set(key.ProbeAttempts, Default[key.ProbeAttempts].Value)
			})

			Convey("Then validation should fail", func() {
				So(Validate(), ShouldNotBeNil)
			})
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.ProbeAttempts]

		Convey("It should be prefixed in the environment", func() {
			So(field.Env(), ShouldEqual, "CINESRC_PROBE_ATTEMPTS")
		})

		Convey("It should report its type", func() {
			So(field.typeName(), ShouldEqual, "int")
		})
	})
}
