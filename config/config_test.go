package config

import (
	"testing"
	"time"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/key"
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
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetDuration(key.DownloadPause), ShouldEqual, time.Second)
			So(viper.GetString(key.ProviderBaseURL), ShouldEqual, "https://blubrry.com")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("download.pause"), ShouldEqual, "download_pause")
		})

		Convey("Environment variables override defaults", func() {
			t.Setenv("BBDL_DOWNLOAD_OVERWRITE", "true")
			_ = Setup()
			So(viper.GetBool(key.DownloadOverwrite), ShouldBeTrue)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given registered fields", t, func() {
		Convey("Env is prefixed with the app name", func() {
			f := Default[key.DownloadPause]
			So(f.Env(), ShouldEqual, "BBDL_DOWNLOAD_PAUSE")
		})

		Convey("Parse honours the default's type", func() {
			pause := Default[key.DownloadPause]
			v, err := pause.Parse([]string{"250ms"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "250ms")

			_, err = pause.Parse([]string{"soon"})
			So(err, ShouldNotBeNil)

			overwrite := Default[key.DownloadOverwrite]
			v, err = overwrite.Parse([]string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			_, err = overwrite.Parse(nil)
			So(err, ShouldNotBeNil)
		})

		Convey("TypeName reports durations", func() {
			f := Default[key.NetworkTimeout]
			So(f.TypeName(), ShouldEqual, "duration")
		})
	})
}
