package history

import (
	"testing"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/podcast"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv("BBDL_CONFIG_PATH", "/config")
		Invalidate()

		ep := &podcast.Episode{
			Title:    "Episode 1",
			AudioURL: "https://media.example.com/ep-1.mp3",
			PageURL:  "https://blubrry.com/show/1/",
		}

		Convey("Nothing is recorded yet", func() {
			records, err := Of("show")
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})

		Convey("When saving a download", func() {
			So(Save("show", ep, "/out/ep-1.mp3"), ShouldBeNil)

			Convey("It is listed for its podcast only", func() {
				records, err := Of("show")
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Title, ShouldEqual, "Episode 1")
				So(records[0].Path, ShouldEqual, "/out/ep-1.mp3")
				So(records[0].DownloadedAt.IsZero(), ShouldBeFalse)

				others, err := Of("other")
				So(err, ShouldBeNil)
				So(others, ShouldBeEmpty)
			})

			Convey("Saving the same episode again keeps one record", func() {
				So(Save("show", ep, "/out/ep-1.mp3"), ShouldBeNil)
				records, err := Of("show")
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
			})

			Convey("It survives a fresh handle", func() {
				Invalidate()
				all, err := Get()
				So(err, ShouldBeNil)
				So(all["show"], ShouldContainKey, "ep-1.mp3")
			})
		})
	})
}
